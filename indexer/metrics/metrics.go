package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// BlocksAppliedTotal counts committed blocks.
	BlocksAppliedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arkade_indexer_blocks_applied_total",
			Help: "Total number of blocks applied and committed",
		},
	)

	// TxAppliedTotal counts applied transactions by status.
	TxAppliedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkade_indexer_tx_applied_total",
			Help: "Total number of transactions applied",
		},
		[]string{"status"},
	)

	// TxRejectedTotal counts rejected transactions by error code.
	TxRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "arkade_indexer_tx_rejected_total",
			Help: "Total number of rejected transactions",
		},
		[]string{"code"},
	)

	// ImplicitBurnsTotal counts markerless transactions that destroyed
	// asset balances on their inputs.
	ImplicitBurnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arkade_indexer_implicit_burns_total",
			Help: "Total number of implicit burns",
		},
	)

	// RollbacksTotal counts block rollbacks.
	RollbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "arkade_indexer_rollbacks_total",
			Help: "Total number of block rollbacks",
		},
	)

	// TipHeight shows the committed block height.
	TipHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arkade_indexer_tip_height",
			Help: "Committed block height",
		},
	)

	// MempoolSize shows the number of transactions held in mempool.
	MempoolSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "arkade_indexer_mempool_size",
			Help: "Number of mempool transactions",
		},
	)
)

func init() {
	prometheus.MustRegister(BlocksAppliedTotal)
	prometheus.MustRegister(TxAppliedTotal)
	prometheus.MustRegister(TxRejectedTotal)
	prometheus.MustRegister(ImplicitBurnsTotal)
	prometheus.MustRegister(RollbacksTotal)
	prometheus.MustRegister(TipHeight)
	prometheus.MustRegister(MempoolSize)
}
