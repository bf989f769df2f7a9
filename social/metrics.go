package social

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var postProcessDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Name: "verity_submit_duration_sec",
	Help: "Total duration of post submission processing",
})

var postProcessCount = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "verity_posts_processed",
	Help: "Number of submitted posts, by publish outcome",
}, []string{"published"})

var fameDowngradeCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "verity_fame_downgrades",
	Help: "Number of fame ledger downgrades (including first-offense entries)",
})

var fameUpgradeCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "verity_fame_upgrades",
	Help: "Number of fame ledger upgrades (including first-award entries)",
})

var banCount = promauto.NewCounter(prometheus.CounterOpts{
	Name: "verity_bans_issued",
	Help: "Number of ban transitions (account deactivated, posts retracted)",
})
