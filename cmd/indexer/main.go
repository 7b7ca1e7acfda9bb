package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/lexatlas/lexatlas/internal/queue"
	"github.com/lexatlas/lexatlas/internal/util"
	"github.com/lexatlas/lexatlas/pkg/ai"
	oai "github.com/lexatlas/lexatlas/pkg/ai/ollama"
	gai "github.com/lexatlas/lexatlas/pkg/ai/openai"
	docpgx "github.com/lexatlas/lexatlas/pkg/docstore/pgx"
	"github.com/lexatlas/lexatlas/pkg/graph"
	graphpgx "github.com/lexatlas/lexatlas/pkg/graphstore/pgx"
	"github.com/lexatlas/lexatlas/pkg/logger"
	"github.com/lexatlas/lexatlas/pkg/logger/console"
	vecpgx "github.com/lexatlas/lexatlas/pkg/vector/pgx"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	debug := util.GetEnvBool("DEBUG", false)
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	// Embedding encoder
	adapter := util.GetEnv("AI_ADAPTER")
	var encoder ai.Encoder

	switch adapter {
	case "ollama":
		client, err := oai.NewEncoderClient(oai.NewEncoderClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1024)),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			TokenEncoding:  util.GetEnvString("AI_TOKEN_ENCODING", "cl100k_base"),
			MaxInputTokens: int(util.GetEnvNumeric("AI_MAX_INPUT_TOKENS", 8192)),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
		if err != nil {
			logger.Fatal("Could not create Ollama client", "err", err)
		}
		encoder = client
	default:
		encoder = gai.NewEncoderClient(gai.NewEncoderClientParams{
			EmbeddingModel: util.GetEnv("AI_EMBED_MODEL"),
			Dimensions:     int(util.GetEnvNumeric("AI_EMBED_DIMENSIONS", 1024)),

			BaseURL: util.GetEnv("AI_EMBED_URL"),
			ApiKey:  util.GetEnv("AI_EMBED_KEY"),

			TokenEncoding:  util.GetEnvString("AI_TOKEN_ENCODING", "cl100k_base"),
			MaxInputTokens: int(util.GetEnvNumeric("AI_MAX_INPUT_TOKENS", 8192)),

			MaxConcurrentRequests: int64(util.GetEnvNumeric("AI_PARALLEL_REQ", 8)),
		})
	}

	// Relation vocabulary, overridable per deployment
	vocab := graph.DefaultVocabulary()
	if path := util.GetEnv("GRAPH_VOCAB_FILE"); path != "" {
		loaded, err := graph.LoadVocabulary(path)
		if err != nil {
			logger.Fatal("Could not load graph vocabulary", "path", path, "err", err)
		}
		vocab = loaded
	}
	builder := graph.NewBuilder(vocab)

	// Init pgx client
	pgConn, err := pgxpool.New(ctx, util.GetEnv("DATABASE_URL"))
	if err != nil {
		logger.Fatal("Unable to connect to database", "err", err)
	}
	defer pgConn.Close()
	pgConn.Config().AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	docs := docpgx.NewDocumentDBStore(pgConn)
	index := vecpgx.NewVectorDBIndex(pgConn)
	graphStore := graphpgx.NewGraphDBStore(pgConn)

	// Init rabbitmq
	conn := queue.Init()
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	queues := []string{queue.RebuildQueue}
	if err := queue.SetupQueues(ch, queues); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	logger.Info("Listening for messages")

	// Single consumer channel with prefetch=1 so only one rebuild runs at
	// a time; a rebuild replaces whole artifacts and must not interleave.
	consumerCh, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open consumer channel", "err", err)
	}
	defer consumerCh.Close()

	if err := consumerCh.Qos(1, 0, true); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	type queuedMessage struct {
		msg       amqp.Delivery
		queueName string
	}

	messageChan := make(chan queuedMessage)

	for _, queueName := range queues {
		go func(qName string) {
			consumerTag := fmt.Sprintf("%s_consumer", qName)
			msgs, err := consumerCh.Consume(
				qName,
				consumerTag,
				false, // autoAck
				false, // exclusive
				false, // noLocal
				false, // noWait
				nil,   // args
			)
			if err != nil {
				logger.Fatal("Failed to start consuming", "queue", qName, "err", err)
			}

			for {
				select {
				case <-ctx.Done():
					logger.Info("Stopping consumer", "queue", qName)
					return
				case msg, ok := <-msgs:
					if !ok {
						logger.Info("Message channel closed", "queue", qName)
						return
					}
					messageChan <- queuedMessage{msg: msg, queueName: qName}
				}
			}
		}(queueName)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				logger.Info("Stopping message processor")
				return
			case qm := <-messageChan:
				startTime := time.Now()
				logger.Info("Received message", "queue", qm.queueName)

				var processingErr error
				switch qm.queueName {
				case queue.RebuildQueue:
					processingErr = queue.ProcessRebuild(ctx, encoder, docs, index, builder, graphStore, string(qm.msg.Body))
				}

				// If there was an error send to retry or dead-letter, otherwise ack the message
				if processingErr != nil {
					logger.Error("Error processing message", "queue", qm.queueName, "err", processingErr)
					handleProcessingError(consumerCh, qm.msg, qm.queueName)
				} else {
					if err := qm.msg.Ack(false); err != nil {
						logger.Error("Failed to ack message", "err", err)
					}
					logger.Info("Message processed successfully", "queue", qm.queueName)
				}

				metrics := encoder.GetMetrics()
				aiDuration := time.Duration(metrics.DurationMs) * time.Millisecond
				aiHours := int(aiDuration.Hours())
				aiMinutes := int(aiDuration.Minutes()) % 60
				aiSeconds := int(aiDuration.Seconds()) % 60
				logger.Info(
					"Encoder metrics",
					"input_tokens", metrics.InputTokens,
					"requests", metrics.Requests,
					"duration", fmt.Sprintf("%02d:%02d:%02d", aiHours, aiMinutes, aiSeconds),
				)

				processingDuration := time.Since(startTime)
				hours := int(processingDuration.Hours())
				minutes := int(processingDuration.Minutes()) % 60
				seconds := int(processingDuration.Seconds()) % 60
				logger.Info(
					"Processing time",
					"duration", fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds),
				)
				logger.Info("Waiting for next message")
				encoder.ResetMetrics()
			}
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, exiting...")
}

func handleProcessingError(ch *amqp.Channel, msg amqp.Delivery, queueName string) {
	retries := 0
	if val, ok := msg.Headers["x-retries"]; ok {
		if v, ok := val.(int32); ok {
			retries = int(v)
		}
	}

	// If message has been retried 10 times, send to dead-letter
	if retries >= 10 {
		dlqName := queueName + "_dlq"
		logger.Info("Sending message to DLQ", "dlq", dlqName)
		pubErr := ch.Publish(
			"",
			dlqName,
			false,
			false,
			amqp.Publishing{
				ContentType: "application/json",
				Body:        msg.Body,
				Headers:     msg.Headers,
			},
		)
		if pubErr != nil {
			logger.Error("Failed to publish to DLQ", "dlq", dlqName, "err", pubErr)
			msg.Nack(false, true)
			return
		}
		msg.Ack(false)
		return
	}

	retryName := queueName + "_retry"
	headers := msg.Headers
	if headers == nil {
		headers = amqp.Table{}
	}
	headers["x-retries"] = retries + 1

	pubErr := ch.Publish(
		"",
		retryName,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        msg.Body,
			Headers:     headers,
		},
	)
	if pubErr != nil {
		logger.Error("Failed to publish to retry queue", "retry_queue", retryName, "err", pubErr)
		msg.Nack(false, true)
		return
	}
	msg.Ack(false)
}
