package session

import (
	"context"
	"fmt"
	"time"

	"ai-docqa-be/internal/entity"
	"ai-docqa-be/internal/repository/specification"
	"ai-docqa-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const titleMaxLen = 80

// Manager handles the durable side of a conversation: the chat_sessions row
// that anchors persisted turns. The in-memory turn window lives in Store.
type Manager struct {
	store *Store
}

// NewManager creates a new session manager.
func NewManager(store *Store) *Manager {
	return &Manager{store: store}
}

// Store exposes the in-memory window store backing this manager.
func (m *Manager) Store() *Store {
	return m.store
}

// EnsureChatSession resolves the durable session for a turn. A nil sessionId
// starts a new session titled after the question; otherwise ownership is
// verified before the existing session is returned.
func (m *Manager) EnsureChatSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID, question string) (*entity.ChatSession, error) {
	if sessionId == uuid.Nil {
		now := time.Now()
		session := &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     TitleFromQuestion(question),
			CreatedAt: now,
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, fmt.Errorf("create chat session: %w", err)
		}
		return session, nil
	}
	return m.VerifyChatSession(ctx, uow, userId, sessionId)
}

// VerifyChatSession validates session ownership.
func (m *Manager) VerifyChatSession(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or access denied")
	}
	return session, nil
}

// TitleFromQuestion derives a session title from the opening question.
func TitleFromQuestion(question string) string {
	runes := []rune(question)
	if len(runes) <= titleMaxLen {
		return question
	}
	return string(runes[:titleMaxLen]) + "..."
}
