package checkpoint

// searchCheckpoint returns the highest sequence in [0, latest] whose
// timestamp is <= ts. Timestamps are strictly increasing by sequence, with
// sequence 0 pinned at timestamp 0, so a query before every checkpoint lands
// on the empty genesis snapshot.
func searchCheckpoint(latest uint64, timestampAt func(seq uint64) (int64, error), ts int64) (uint64, error) {
	lower, upper := uint64(0), latest
	for upper > lower {
		mid := (upper + lower + 1) / 2
		midTs, err := timestampAt(mid)
		if err != nil {
			return 0, err
		}
		switch {
		case midTs < ts:
			lower = mid
		case midTs > ts:
			upper = mid - 1
		default:
			return mid, nil
		}
	}
	return lower, nil
}
