package postgres

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// SessionRepo реализует repository.SessionRepository
type SessionRepo struct {
	db *gorm.DB
}

// NewSessionRepo создает новый репозиторий сессий
func NewSessionRepo(db *gorm.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// Create создает новую сессию. Идентификаторы генерируются вызывающим
// кодом, поэтому коллизия первичного ключа возможна и сообщается как
// ErrConflict для повторной попытки с новым идентификатором.
func (r *SessionRepo) Create(session *entity.Session) error {
	if err := r.db.Create(session).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrConflict
		}
		return err
	}
	return nil
}

// GetByID возвращает сессию по ID
func (r *SessionRepo) GetByID(id uint) (*entity.Session, error) {
	var session entity.Session
	err := r.db.First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Update сохраняет сессию целиком
func (r *SessionRepo) Update(session *entity.Session) error {
	return r.db.Save(session).Error
}

// AddPlayer добавляет игрока в сессию
func (r *SessionRepo) AddPlayer(player *entity.Player) error {
	return r.db.Create(player).Error
}

// GetPlayer возвращает игрока по ID
func (r *SessionRepo) GetPlayer(id uint) (*entity.Player, error) {
	var player entity.Player
	err := r.db.First(&player, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &player, nil
}

// ListPlayers возвращает игроков сессии в порядке присоединения.
// Служебные записи-проверки исключаются здесь, на границе хранилища.
func (r *SessionRepo) ListPlayers(sessionID uint) ([]entity.Player, error) {
	var players []entity.Player
	err := r.db.
		Where("session_id = ? AND name <> ?", sessionID, entity.ProbeName).
		Order("id").
		Find(&players).Error
	if err != nil {
		return nil, err
	}
	return players, nil
}

// SaveAnswer вставляет или обновляет ответ игрока на вопрос.
// Пока идет отсчет, игрок может менять выбор: повторная отправка
// перезаписывает ответы и время по уникальной паре (игрок, вопрос).
func (r *SessionRepo) SaveAnswer(record *entity.AnswerRecord) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "player_id"}, {Name: "question_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"answers", "correct", "answered_at", "updated_at",
		}),
	}).Create(record).Error
}

// GetPlayerAnswers возвращает ответы игрока по возрастанию позиции вопроса
func (r *SessionRepo) GetPlayerAnswers(playerID uint) ([]entity.AnswerRecord, error) {
	var records []entity.AnswerRecord
	err := r.db.
		Where("player_id = ?", playerID).
		Order("question_index").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// GetSessionAnswers возвращает все ответы сессии, сгруппированные по игрокам.
// Ответы служебных записей-проверок не попадают в выборку.
func (r *SessionRepo) GetSessionAnswers(sessionID uint) (map[uint][]entity.AnswerRecord, error) {
	var records []entity.AnswerRecord
	err := r.db.
		Joins("JOIN players ON players.id = answer_records.player_id").
		Where("answer_records.session_id = ? AND players.name <> ?", sessionID, entity.ProbeName).
		Order("answer_records.player_id, answer_records.question_index").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	grouped := make(map[uint][]entity.AnswerRecord)
	for _, rec := range records {
		grouped[rec.PlayerID] = append(grouped[rec.PlayerID], rec)
	}
	return grouped, nil
}
