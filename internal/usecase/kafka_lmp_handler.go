package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"GridPull/internal/domain/models"
	domrepo "GridPull/internal/domain/repository"
	pkgkafka "GridPull/pkg/kafka"
	"GridPull/pkg/util"
)

// KafkaLMPHandler consumes observation messages and writes them to storage.
type KafkaLMPHandler struct {
	topic   string
	storage domrepo.Storage
	metrics domrepo.Metrics
}

func NewKafkaLMPHandler(topic string, storage domrepo.Storage, metrics domrepo.Metrics) *KafkaLMPHandler {
	return &KafkaLMPHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaLMPHandler) Topic() string { return h.topic }

// incoming message schema: {hub, market, component, date, hour_ending, value}
func (h *KafkaLMPHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Hub        string  `json:"hub"`
		Market     string  `json:"market"`
		Component  string  `json:"component"`
		Date       string  `json:"date"`
		HourEnding int     `json:"hour_ending"`
		Value      float64 `json:"value"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}

	date, ok := util.ParseDate(m.Date)
	if !ok {
		h.metrics.RecordError("consumer_date")
		return fmt.Errorf("bad date %q", m.Date)
	}

	start := time.Now()
	err := h.storage.Store(ctx, &models.PriceObservation{
		Date:       date,
		HourEnding: m.HourEnding,
		Hub:        m.Hub,
		Market:     models.Market(m.Market),
		Component:  models.Component(m.Component),
		Value:      m.Value,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordIngest("clickhouse", m.Market)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaLMPHandler)(nil)
