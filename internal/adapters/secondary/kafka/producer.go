package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/IBM/sarama"
	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/events"
)

// Producer публикует события расчёта карт для downstream-конвейера интерпретации
type Producer struct {
	producer sarama.SyncProducer
	cfg      *Config
	log      *slog.Logger
}

// NewProducer создаёт новый Kafka producer
func NewProducer(cfg *Config, log *slog.Logger) (events.IPublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	if cfg.SecurityProtocol == "SASL_SSL" || cfg.SecurityProtocol == "SASL_PLAINTEXT" {
		config.Net.SASL.Enable = true
		config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
		if cfg.SASLMechanism == "SCRAM-SHA-256" {
			config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
		}
		config.Net.SASL.User = cfg.SASLUsername
		config.Net.SASL.Password = cfg.SASLPassword
		if cfg.SecurityProtocol == "SASL_SSL" {
			config.Net.TLS.Enable = true
		}
	}

	producer, err := sarama.NewSyncProducer(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
	)

	return &Producer{
		producer: producer,
		cfg:      cfg,
		log:      log,
	}, nil
}

// PublishChartComputed отправляет событие chart.computed.
// Ключ - chart_id для стабильного партиционирования по карте.
func (p *Producer) PublishChartComputed(ctx context.Context, event domain.ChartComputedEvent) error {
	valueBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal chart event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.cfg.Topic,
		Key:   sarama.StringEncoder(event.ChartID.String()),
		Value: sarama.ByteEncoder(valueBytes),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte("chart.computed")},
			{Key: []byte("reference_version"), Value: []byte(event.ReferenceVersion)},
			{Key: []byte("ruleset_version"), Value: []byte(event.RulesetVersion)},
		},
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		p.log.Error("failed to publish chart event",
			"error", err,
			"chart_id", event.ChartID,
			"topic", p.cfg.Topic)
		return fmt.Errorf("failed to publish chart event: %w", err)
	}

	p.log.Debug("chart event published",
		"chart_id", event.ChartID,
		"partition", partition,
		"offset", offset)
	return nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	return p.producer.Close()
}
