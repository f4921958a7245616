package repositories

import (
	"context"

	"rentfolio/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListReceived(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*models.Message, error)
	ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]*models.Message, error)
	CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error)
}

type messageRepo struct {
	db Database
}

func NewMessageRepo(db Database) MessageRepository {
	return &messageRepo{db: db}
}

const messageColumns = `id, sender_id, receiver_id, property_id, subject, message, is_read, created_at, updated_at`

func (r *messageRepo) Create(ctx context.Context, message *models.Message) error {
	query := `
		INSERT INTO messages (id, sender_id, receiver_id, property_id, subject, message, is_read, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, message.ID, message.SenderID, message.ReceiverID, message.PropertyID, message.Subject, message.Message, message.IsRead)
	return err
}

func (r *messageRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	message := &models.Message{}
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&message.ID, &message.SenderID, &message.ReceiverID, &message.PropertyID, &message.Subject, &message.Message, &message.IsRead, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return message, nil
}

func (r *messageRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE messages SET is_read = TRUE, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM messages WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *messageRepo) list(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		message := &models.Message{}
		if err := rows.Scan(&message.ID, &message.SenderID, &message.ReceiverID, &message.PropertyID, &message.Subject, &message.Message, &message.IsRead, &message.CreatedAt, &message.UpdatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, rows.Err()
}

func (r *messageRepo) ListReceived(ctx context.Context, receiverID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE receiver_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, receiverID, limit, offset)
}

func (r *messageRepo) ListSent(ctx context.Context, senderID uuid.UUID, limit, offset int) ([]*models.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE sender_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, senderID, limit, offset)
}

func (r *messageRepo) CountUnread(ctx context.Context, receiverID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND is_read = FALSE`
	var count int
	err := r.db.QueryRow(ctx, query, receiverID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
