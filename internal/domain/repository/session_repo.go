package repository

import (
	"github.com/yourusername/quizgame-api/internal/domain/entity"
)

// SessionRepository определяет операции над сессиями, игроками и ответами.
// Служебный игрок-проверка (entity.ProbeName) исключается из всех выборок
// на этой границе: потребителям не приходится фильтровать его повторно.
type SessionRepository interface {
	Create(session *entity.Session) error
	// GetByID возвращает сессию или ErrNotFound
	GetByID(id uint) (*entity.Session, error)
	Update(session *entity.Session) error

	AddPlayer(player *entity.Player) error
	// GetPlayer возвращает игрока или ErrNotFound
	GetPlayer(id uint) (*entity.Player, error)
	// ListPlayers возвращает игроков сессии в порядке присоединения
	ListPlayers(sessionID uint) ([]entity.Player, error)

	// SaveAnswer вставляет или обновляет ответ игрока на вопрос
	// (игрок может менять выбор, пока идет отсчет)
	SaveAnswer(record *entity.AnswerRecord) error
	// GetPlayerAnswers возвращает ответы игрока по возрастанию позиции вопроса
	GetPlayerAnswers(playerID uint) ([]entity.AnswerRecord, error)
	// GetSessionAnswers возвращает все ответы сессии, сгруппированные по игрокам
	GetSessionAnswers(sessionID uint) (map[uint][]entity.AnswerRecord, error)
}
