package distribution

import (
	"encoding/hex"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopic(t *testing.T) {
	// Well-known ERC-20 Transfer topic.
	got := topic("Transfer(address,address,uint256)")
	assert.Equal(t, "ddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", hex.EncodeToString(got[:]))

	assert.NotEqual(t, MintedTopic, DistributionTopic)
	assert.Equal(t, MintedTopic, Minted{}.Topic())
	assert.Equal(t, DistributionTopic, Distribution{}.Topic())
}

func TestEventLog(t *testing.T) {
	var l EventLog
	l.Emit(Minted{Day: 1, Amount: big.NewInt(10), Days: 1})
	l.Emit(Distribution{Recipient: KindTreasury, Amount: big.NewInt(3)})
	l.Emit(Distribution{Recipient: KindWorkerPool, Amount: big.NewInt(4)})

	require.Len(t, l.Events(), 3)
	assert.Len(t, l.ByTopic(MintedTopic), 1)
	assert.Len(t, l.ByTopic(DistributionTopic), 2)
}
