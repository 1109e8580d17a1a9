package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/model"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/embedding"
	"ai-docqa-be/pkg/events"
	pktNats "ai-docqa-be/pkg/nats"
	"ai-docqa-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
	eventPublisher    *pktNats.Publisher
	chunkSize         int
	chunkOverlap      int
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
	eventPublisher *pktNats.Publisher,
	chunkSize int,
	chunkOverlap int,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.DocumentUploadedPayload
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing document indexing for DocumentId: %s", payload.DocumentId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx, specification.ByID{ID: payload.DocumentId})
	if err != nil {
		log.Printf("[ERROR] Failed to get document %s: %v", payload.DocumentId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if document == nil {
		log.Printf("[ERROR] Document not found: %s", payload.DocumentId)
		msg.Ack() // Document deleted? Ack.
		return
	}

	if err := cs.indexDocument(ctx, uow, document); err != nil {
		log.Printf("[ERROR] Indexing failed for document %s: %v", payload.DocumentId, err)
		cs.markStatus(ctx, uow, document, model.DocumentStatusFailed)
		if cs.eventPublisher != nil {
			evt := events.NewDocumentIndexFailedEvent(document.Id, document.UserId, err.Error())
			if pubErr := cs.eventPublisher.Publish(ctx, evt); pubErr != nil {
				log.Printf("[WARN] Failed to publish index failed event: %v", pubErr)
			}
		}
		msg.Ack() // Permanent failure is recorded on the row, no retry loop
		return
	}

	msg.Ack()
}

func (cs *consumerService) indexDocument(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document) error {
	raw, err := os.ReadFile(document.StoragePath)
	if err != nil {
		return fmt.Errorf("read stored file: %w", err)
	}

	content := fmt.Sprintf("Document Title: %s\n\n%s", document.Title, string(raw))

	log.Printf("[INFO] Generating embeddings for document %s (content length: %d)", document.Id, len(content))

	chunks := utils.SplitText(content, cs.chunkSize, cs.chunkOverlap)
	log.Printf("[INFO] Content split into %d chunks", len(chunks))

	var newChunks []*entity.DocumentChunk

	for i, chunk := range chunks {
		res, err := cs.embeddingProvider.Generate(ctx, chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk %d: %w", i, err)
		}

		newChunks = append(newChunks, &entity.DocumentChunk{
			Id:         uuid.New(),
			Content:    chunk,
			Embedding:  res.Embedding.Values,
			DocumentId: document.Id,
			ChunkIndex: i,
			CreatedAt:  time.Now(),
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Re-index replaces any previous chunks so the document never has a
	// mixed generation.
	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, document.Id); err != nil {
		return fmt.Errorf("delete old chunks: %w", err)
	}

	if len(newChunks) > 0 {
		if err := uow.DocumentChunkRepository().CreateBulk(ctx, newChunks); err != nil {
			return fmt.Errorf("create bulk chunks: %w", err)
		}
	}

	now := time.Now()
	document.Status = model.DocumentStatusIndexed
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		return fmt.Errorf("update document status: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.Printf("[SUCCESS] Document indexed: %d chunks for DocumentId: %s", len(newChunks), document.Id)

	if cs.eventPublisher != nil {
		evt := events.NewDocumentIndexedEvent(document.Id, document.UserId, len(newChunks))
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish indexed event: %v", err)
		}
	}

	return nil
}

func (cs *consumerService) markStatus(ctx context.Context, uow unitofwork.UnitOfWork, document *entity.Document, status string) {
	now := time.Now()
	document.Status = status
	document.UpdatedAt = &now
	if err := uow.DocumentRepository().Update(ctx, document); err != nil {
		log.Printf("[ERROR] Failed to mark document %s as %s: %v", document.Id, status, err)
	}
}
