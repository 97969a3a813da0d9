package distribution

import (
	"math/big"
	"sync"

	"golang.org/x/crypto/sha3"

	"github.com/bitfsorg/rewardledger-go/address"
)

const (
	mintedSignature       = "Minted(uint256,uint256,uint256)"
	distributionSignature = "Distribution(string,address,uint256)"
)

var (
	// MintedTopic identifies Minted events.
	MintedTopic = topic(mintedSignature)

	// DistributionTopic identifies Distribution events.
	DistributionTopic = topic(distributionSignature)
)

// topic returns the Keccak-256 hash of an event signature.
func topic(signature string) [32]byte {
	var out [32]byte
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	copy(out[:], h.Sum(nil))
	return out
}

// Event is a log entry emitted by the engine.
type Event interface {
	Topic() [32]byte
}

// Minted records one successful mint.
type Minted struct {
	Day    int64
	Amount *big.Int
	Days   int64 // days covered since the previous distribution
}

func (Minted) Topic() [32]byte { return MintedTopic }

// Distribution records one transfer to a recipient.
type Distribution struct {
	Recipient string
	User      address.Address
	Amount    *big.Int
}

func (Distribution) Topic() [32]byte { return DistributionTopic }

// EventSink receives engine events.
type EventSink interface {
	Emit(ev Event)
}

// EventLog is an in-memory EventSink.
type EventLog struct {
	mu     sync.Mutex
	events []Event
}

// Emit appends ev.
func (l *EventLog) Emit(ev Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

// Events returns a copy of the recorded events.
func (l *EventLog) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// ByTopic returns the recorded events with the given topic.
func (l *EventLog) ByTopic(t [32]byte) []Event {
	var out []Event
	for _, ev := range l.Events() {
		if ev.Topic() == t {
			out = append(out, ev)
		}
	}
	return out
}

type discardSink struct{}

func (discardSink) Emit(Event) {}
