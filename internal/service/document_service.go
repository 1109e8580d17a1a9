package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/model"
	"ai-docqa-be/internal/pkg/logger"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, title string, fileHeader *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetDocumentResponse, error)
	Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	uploadDir        string
	log              logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	uploadDir string,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		uploadDir:        uploadDir,
		log:              log,
	}
}

// Upload stores the raw file, records the document as PENDING, and hands it
// to the ingestion worker. Indexing is asynchronous so the response returns
// before chunks exist.
func (ds *documentService) Upload(ctx context.Context, userId uuid.UUID, title string, fileHeader *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	if title == "" {
		title = strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	}

	documentId := uuid.New()
	storagePath := filepath.Join(ds.uploadDir, fmt.Sprintf("%s%s", documentId, filepath.Ext(fileHeader.Filename)))

	if err := ds.saveFile(fileHeader, storagePath); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	document := &entity.Document{
		Id:          documentId,
		UserId:      userId,
		Title:       title,
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		StoragePath: storagePath,
		Status:      model.DocumentStatusPending,
		CreatedAt:   time.Now(),
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		os.Remove(storagePath)
		return nil, fmt.Errorf("create document: %w", err)
	}

	payload, err := json.Marshal(dto.DocumentUploadedPayload{
		DocumentId: document.Id,
		UserId:     userId,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal upload payload: %w", err)
	}
	if err := ds.publisherService.Publish(ctx, payload); err != nil {
		ds.log.Error("document", "Failed to publish upload message", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		return nil, fmt.Errorf("publish upload: %w", err)
	}

	ds.log.Info("document", "Document uploaded", map[string]interface{}{
		"document_id": document.Id.String(),
		"user_id":     userId.String(),
		"filename":    document.Filename,
	})

	return &dto.UploadDocumentResponse{
		Id:       document.Id,
		Title:    document.Title,
		Filename: document.Filename,
		Status:   document.Status,
	}, nil
}

func (ds *documentService) saveFile(fileHeader *multipart.FileHeader, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}

	src, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

func (ds *documentService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetDocumentResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetDocumentResponse, len(documents))
	for i, doc := range documents {
		res[i] = &dto.GetDocumentResponse{
			Id:        doc.Id,
			Title:     doc.Title,
			Filename:  doc.Filename,
			Status:    doc.Status,
			CreatedAt: doc.CreatedAt,
		}
	}
	return res, nil
}

// Delete removes the document row, its chunks, and the stored file. The row
// and chunks go in one transaction; the file removal is best effort after.
func (ds *documentService) Delete(ctx context.Context, userId uuid.UUID, documentId uuid.UUID) error {
	uow := ds.uowFactory.NewUnitOfWork(ctx)

	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if document == nil {
		return fmt.Errorf("document not found or access denied")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.DocumentChunkRepository().DeleteByDocumentId(ctx, documentId); err != nil {
		return fmt.Errorf("delete chunks: %w", err)
	}
	if err := uow.DocumentRepository().Delete(ctx, documentId); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	if document.StoragePath != "" {
		if err := os.Remove(document.StoragePath); err != nil && !os.IsNotExist(err) {
			ds.log.Warn("document", "Failed to remove stored file", map[string]interface{}{
				"document_id": documentId.String(),
				"path":        document.StoragePath,
			})
		}
	}
	return nil
}
