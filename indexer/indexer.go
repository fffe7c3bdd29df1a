package indexer

import (
	"log/slog"
	"time"

	"arkade.dev/assets/indexer/metrics"
)

// Indexer is the asset-layer state machine. All mutating operations run
// sequentially against its single owned State; callers driving a live chain
// must serialize ApplyBlock, ApplyToMempool and RollbackLastBlock through
// one owner.
type Indexer struct {
	store  SnapshotStore
	state  *State
	logger *slog.Logger
	now    func() int64
}

// New opens an indexer over store, resuming from the latest snapshot or the
// genesis state when none exists.
func New(store SnapshotStore, logger *slog.Logger) (*Indexer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	ix := &Indexer{
		store:  store,
		logger: logger,
		now:    func() int64 { return time.Now().UnixNano() },
	}

	height, ok, err := store.Latest()
	if err != nil {
		return nil, err
	}
	if !ok {
		ix.state = NewState()
		return ix, nil
	}
	st, err := store.Load(height)
	if err != nil {
		return nil, err
	}
	ix.state = st
	ix.logger.Info("indexer resumed", "height", height,
		"assets", len(st.Assets), "utxos", len(st.Utxos))
	metrics.TipHeight.Set(float64(height))
	return ix, nil
}

// State exposes the confirmed state. Callers must not mutate it.
func (ix *Indexer) State() *State {
	return ix.state
}

// Init persists the genesis state so an empty datadir round-trips through
// the store.
func (ix *Indexer) Init() error {
	return ix.store.Save(ix.state.BlockHeight, ix.state)
}

func (ix *Indexer) mempoolCount() int {
	n := 0
	for _, rec := range ix.state.Transactions {
		if rec.Status == StatusMempool {
			n++
		}
	}
	return n
}
