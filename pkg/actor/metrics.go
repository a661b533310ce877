package actor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mailboxDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "revd",
		Subsystem: "actor",
		Name:      "mailbox_depth",
		Help:      "The number of messages waiting in the mailbox",
	}, []string{"actor"})

	messageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "revd",
		Subsystem: "actor",
		Name:      "message_duration_seconds",
		Help:      "The time spent handling a message",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"actor", "message"})

	messageCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "revd",
		Subsystem: "actor",
		Name:      "messages_total",
		Help:      "The total number of handled messages",
	}, []string{"actor", "message", "outcome"})

	rejectedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "revd",
		Subsystem: "actor",
		Name:      "rejected_total",
		Help:      "The total number of messages rejected before reaching the mailbox",
	}, []string{"actor", "reason"})
)
