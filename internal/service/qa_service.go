package service

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	"ai-docqa-be/internal/constant"
	"ai-docqa-be/internal/dto"
	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"
	"ai-docqa-be/pkg/events"
	"ai-docqa-be/pkg/llm"
	pktNats "ai-docqa-be/pkg/nats"
	"ai-docqa-be/pkg/rag"
	"ai-docqa-be/pkg/rag/session"

	"github.com/google/uuid"
)

// IQAService defines the question answering service interface
type IQAService interface {
	Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error)
	GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
	DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error
	SetProgressObserver(observer rag.Observer)
}

type qaService struct {
	uowFactory     unitofwork.RepositoryFactory
	pipeline       *rag.Pipeline
	sessionManager *session.Manager
	eventPublisher *pktNats.Publisher
	ragLogger      *log.Logger
}

// NewQAService wires the pipeline and its session stores into the service.
func NewQAService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	retriever rag.Retriever,
	store *session.Store,
	cfg rag.Config,
	eventPublisher *pktNats.Publisher,
) IQAService {
	ragLogger := initRAGLogger()

	return &qaService{
		uowFactory:     uowFactory,
		pipeline:       rag.NewPipeline(llmProvider, retriever, store, cfg, ragLogger),
		sessionManager: session.NewManager(store),
		eventPublisher: eventPublisher,
		ragLogger:      ragLogger,
	}
}

func initRAGLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// SetProgressObserver forwards pipeline stage transitions, e.g. into the
// websocket hub. Must be called before the first Ask.
func (qs *qaService) SetProgressObserver(observer rag.Observer) {
	qs.pipeline.SetObserver(observer)
}

// Ask runs one full pipeline turn and persists the (question, answer) pair
// with its trace. A failed run writes nothing.
func (qs *qaService) Ask(ctx context.Context, userId uuid.UUID, request *dto.AskRequest) (*dto.AskResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	sessionId := uuid.Nil
	if request.SessionId != nil {
		sessionId = *request.SessionId
	}
	chatSession, err := qs.sessionManager.EnsureChatSession(ctx, uow, userId, sessionId, request.Question)
	if err != nil {
		return nil, err
	}

	result, err := qs.pipeline.Run(ctx, chatSession.Id.String(), request.Question)
	if err != nil {
		qs.publishAnswerFailed(ctx, chatSession.Id, userId, request.Question, err)
		return nil, err
	}

	if err := qs.persistTurn(ctx, uow, chatSession.Id, request.Question, result); err != nil {
		// The in-memory turn is already committed; losing the durable copy
		// is logged but does not fail the answer.
		qs.ragLogger.Printf("[WARN] Failed to persist turn for session %s: %v", chatSession.Id, err)
	}

	if qs.eventPublisher != nil {
		evt := events.NewQuestionAnsweredEvent(chatSession.Id, userId, request.Question, len(result.SubQuestions), len(result.Context))
		if err := qs.eventPublisher.Publish(ctx, evt); err != nil {
			qs.ragLogger.Printf("[WARN] Failed to publish answered event: %v", err)
		}
	}

	return qs.toAskResponse(chatSession.Id, result), nil
}

func (qs *qaService) publishAnswerFailed(ctx context.Context, sessionId, userId uuid.UUID, question string, cause error) {
	if qs.eventPublisher == nil {
		return
	}
	evt := events.NewQuestionAnswerFailedEvent(sessionId, userId, question, cause.Error())
	if err := qs.eventPublisher.Publish(ctx, evt); err != nil {
		qs.ragLogger.Printf("[WARN] Failed to publish answer failed event: %v", err)
	}
}

func (qs *qaService) persistTurn(ctx context.Context, uow unitofwork.UnitOfWork, sessionId uuid.UUID, question string, result *rag.Result) error {
	now := time.Now()

	trace := &entity.TurnTrace{
		Plan:         result.Plan,
		SubQuestions: result.SubQuestions,
	}
	for _, unit := range result.Context {
		documentId, err := uuid.Parse(unit.Source.DocumentID)
		if err != nil {
			continue
		}
		trace.Citations = append(trace.Citations, entity.CitationInfo{
			DocumentId:    documentId,
			DocumentTitle: unit.Source.DocumentTitle,
			ChunkIndex:    unit.Source.ChunkIndex,
			Score:         unit.Score,
		})
	}

	messages := []*entity.ChatMessage{
		{
			Id:            uuid.New(),
			Content:       question,
			Role:          constant.ChatMessageRoleUser,
			ChatSessionId: sessionId,
			CreatedAt:     now,
		},
		{
			Id:            uuid.New(),
			Content:       result.Answer,
			Role:          constant.ChatMessageRoleModel,
			ChatSessionId: sessionId,
			Trace:         trace,
			CreatedAt:     now.Add(time.Millisecond), // keep deterministic ordering
		},
	}
	return uow.ChatMessageRepository().CreateBulk(ctx, messages)
}

func (qs *qaService) toAskResponse(sessionId uuid.UUID, result *rag.Result) *dto.AskResponse {
	evidence := make([]dto.EvidenceDTO, len(result.Context))
	for i, unit := range result.Context {
		evidence[i] = dto.EvidenceDTO{
			Text:          unit.Text,
			DocumentId:    unit.Source.DocumentID,
			DocumentTitle: unit.Source.DocumentTitle,
			ChunkIndex:    unit.Source.ChunkIndex,
			Score:         unit.Score,
			SubQuestion:   unit.SubQuestion,
		}
	}
	return &dto.AskResponse{
		Answer:       result.Answer,
		Context:      evidence,
		Plan:         result.Plan,
		SubQuestions: result.SubQuestions,
		SessionId:    sessionId,
	}
}

func (qs *qaService) GetAllSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllSessionsResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)
	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllSessionsResponse, len(sessions))
	for i, s := range sessions {
		res[i] = &dto.GetAllSessionsResponse{
			Id:        s.Id,
			Title:     s.Title,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		}
	}
	return res, nil
}

func (qs *qaService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	if _, err := qs.sessionManager.VerifyChatSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, msg := range messages {
		item := &dto.GetChatHistoryResponse{
			Id:        msg.Id,
			Role:      msg.Role,
			Content:   msg.Content,
			CreatedAt: msg.CreatedAt,
		}
		if msg.Trace != nil {
			item.Plan = msg.Trace.Plan
			for _, c := range msg.Trace.Citations {
				item.Citations = append(item.Citations, dto.CitationDTO{
					DocumentId:    c.DocumentId,
					DocumentTitle: c.DocumentTitle,
					ChunkIndex:    c.ChunkIndex,
					Score:         c.Score,
				})
			}
		}
		res[i] = item
	}
	return res, nil
}

func (qs *qaService) DeleteSession(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) error {
	uow := qs.uowFactory.NewUnitOfWork(ctx)

	if _, err := qs.sessionManager.VerifyChatSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	// Drop the in-memory window too so a recreated session starts clean.
	qs.sessionManager.Store().Delete(sessionId.String())
	return nil
}
