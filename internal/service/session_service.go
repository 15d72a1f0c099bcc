package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"time"

	"github.com/yourusername/quizgame-api/internal/domain/entity"
	"github.com/yourusername/quizgame-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizgame-api/internal/pkg/errors"
)

// Мутации жизненного цикла сессии
const (
	MutationStart   = "START"
	MutationAdvance = "ADVANCE"
	MutationEnd     = "END"
)

// Диапазон генерируемых идентификаторов сессии: не меньше шести знаков,
// потому что клиенты отбрасывают более короткие до обращения к серверу
const (
	minSessionID = 100000
	maxSessionID = 999999999
)

// MutationResult - результат мутации жизненного цикла
type MutationResult struct {
	SessionID uint `json:"sessionId"`
	Position  int  `json:"position"`
}

// SessionStatus - статус сессии для панели администратора.
// Вопросы отдаются целиком, включая правильные ответы.
type SessionStatus struct {
	Active            bool                `json:"active"`
	Position          int                 `json:"position"`
	Questions         entity.QuestionList `json:"questions"`
	Players           []string            `json:"players"`
	QuestionStartedAt *time.Time          `json:"isoTimeLastQuestionStarted"`
}

// PlayerState - статус сессии глазами игрока
type PlayerState struct {
	Started      bool `json:"started"`
	Active       bool `json:"active"`
	SessionEnded bool `json:"sessionEnded"`
	Position     int  `json:"position"`
}

// SessionService управляет жизненным циклом сессий и действиями игроков
type SessionService struct {
	gameRepo      repository.GameRepository
	sessionRepo   repository.SessionRepository
	cacheRepo     repository.CacheRepository
	resultService *ResultService

	statusCacheTTL time.Duration
	stateTTL       time.Duration
}

// NewSessionService создает новый сервис сессий
func NewSessionService(
	gameRepo repository.GameRepository,
	sessionRepo repository.SessionRepository,
	cacheRepo repository.CacheRepository,
	resultService *ResultService,
	statusCacheTTL time.Duration,
	stateTTL time.Duration,
) *SessionService {
	if statusCacheTTL <= 0 {
		statusCacheTTL = time.Second
	}
	if stateTTL <= 0 {
		stateTTL = 24 * time.Hour
	}
	return &SessionService{
		gameRepo:       gameRepo,
		sessionRepo:    sessionRepo,
		cacheRepo:      cacheRepo,
		resultService:  resultService,
		statusCacheTTL: statusCacheTTL,
		stateTTL:       stateTTL,
	}
}

// Mutate выполняет мутацию жизненного цикла игры: START/ADVANCE/END
func (s *SessionService) Mutate(ctx context.Context, owner string, gameID uint, mutation string) (*MutationResult, error) {
	game, err := s.gameRepo.GetByID(gameID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrGameNotFound
		}
		return nil, err
	}
	if game.Owner != owner {
		return nil, apperrors.ErrGameNotFound // Чужие игры неотличимы от несуществующих
	}

	switch mutation {
	case MutationStart:
		return s.start(ctx, game)
	case MutationAdvance:
		return s.advance(ctx, game)
	case MutationEnd:
		return s.end(ctx, game)
	default:
		return nil, apperrors.New(apperrors.KindValidation, fmt.Sprintf("Unknown mutation type %q", mutation))
	}
}

// start создает сессию с замороженным снапшотом вопросов в позиции лобби
func (s *SessionService) start(ctx context.Context, game *entity.Game) (*MutationResult, error) {
	if game.HasActiveSession() {
		return nil, apperrors.New(apperrors.KindConflict, "Game already has an active session")
	}
	if len(game.Questions) == 0 {
		return nil, apperrors.New(apperrors.KindValidation, "Game has no questions")
	}

	session := &entity.Session{
		GameID:    game.ID,
		Owner:     game.Owner,
		Position:  entity.PositionLobby,
		Questions: append(entity.QuestionList{}, game.Questions...),
		Active:    true,
	}

	// Идентификатор генерируется случайным; при коллизии пробуем снова
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		session.ID = newSessionID()
		if err = s.sessionRepo.Create(session); err == nil {
			break
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to allocate session id: %w", err)
	}

	sessionID := session.ID
	game.ActiveSessionID = &sessionID
	if err := s.gameRepo.Update(game); err != nil {
		return nil, err
	}

	log.Printf("[SessionService] Игра #%d запущена, сессия #%d", game.ID, session.ID)
	return &MutationResult{SessionID: session.ID, Position: session.Position}, nil
}

// advance переводит сессию на следующий вопрос; после последнего вопроса
// сессия завершается
func (s *SessionService) advance(ctx context.Context, game *entity.Game) (*MutationResult, error) {
	session, err := s.activeSession(ctx, game)
	if err != nil {
		return nil, err
	}

	if session.Position+1 >= len(session.Questions) {
		log.Printf("[SessionService] Сессия #%d продвинута за последний вопрос, завершаем", session.ID)
		return s.end(ctx, game)
	}

	now := time.Now().UTC()
	session.Position++
	session.QuestionStartedAt = &now
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	// Время старта каждой позиции держим и в Redis: оно нужно на горячем
	// пути отправки ответов и переживает продвижение на следующий вопрос
	startKey := questionStartKey(session.ID, session.Position)
	if err := s.cacheRepo.Set(ctx, startKey, now.Format(time.RFC3339Nano), s.stateTTL); err != nil {
		log.Printf("[SessionService] WARNING: не удалось сохранить время старта вопроса в Redis: %v", err)
	}
	s.invalidateStatus(ctx, session.ID)

	log.Printf("[SessionService] Сессия #%d: вопрос %d/%d", session.ID, session.Position+1, len(session.Questions))
	return &MutationResult{SessionID: session.ID, Position: session.Position}, nil
}

// end завершает активную сессию игры
func (s *SessionService) end(ctx context.Context, game *entity.Game) (*MutationResult, error) {
	session, err := s.activeSession(ctx, game)
	if err != nil {
		return nil, err
	}

	session.Active = false
	if err := s.sessionRepo.Update(session); err != nil {
		return nil, err
	}

	game.ActiveSessionID = nil
	if err := s.gameRepo.Update(game); err != nil {
		return nil, err
	}
	s.invalidateStatus(ctx, session.ID)

	log.Printf("[SessionService] Сессия #%d завершена", session.ID)

	// Сводка владельцу уходит в фоне: ошибка отправки не мешает завершению
	if s.resultService != nil {
		go func(gameName, owner string, sessionID uint) {
			bg, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.resultService.SendOwnerSummary(bg, owner, gameName, sessionID); err != nil {
				log.Printf("[SessionService] Не удалось отправить сводку сессии #%d: %v", sessionID, err)
			}
		}(game.Name, game.Owner, session.ID)
	}

	return &MutationResult{SessionID: session.ID, Position: session.Position}, nil
}

func (s *SessionService) activeSession(ctx context.Context, game *entity.Game) (*entity.Session, error) {
	if !game.HasActiveSession() {
		return nil, apperrors.New(apperrors.KindConflict, "Game has no active session")
	}
	session, err := s.sessionRepo.GetByID(*game.ActiveSessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active {
		return nil, apperrors.ErrNotActiveSession
	}
	return session, nil
}

// Status возвращает статус сессии для панели администратора.
// Ответ кешируется на короткий TTL: панель опрашивает статус раз в пару
// секунд, и кеш гасит нагрузку при большом числе открытых панелей.
func (s *SessionService) Status(ctx context.Context, owner string, sessionID uint) (*SessionStatus, error) {
	session, err := s.ownedSession(ctx, owner, sessionID)
	if err != nil {
		return nil, err
	}

	var cached SessionStatus
	if err := s.cacheRepo.GetJSON(ctx, statusKey(sessionID), &cached); err == nil {
		return &cached, nil
	}

	players, err := s.sessionRepo.ListPlayers(sessionID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Name)
	}

	status := &SessionStatus{
		Active:            session.Active,
		Position:          session.Position,
		Questions:         session.Questions,
		Players:           names,
		QuestionStartedAt: session.QuestionStartedAt,
	}

	if err := s.cacheRepo.SetJSON(ctx, statusKey(sessionID), status, s.statusCacheTTL); err != nil {
		log.Printf("[SessionService] WARNING: не удалось закешировать статус сессии #%d: %v", sessionID, err)
	}
	return status, nil
}

// Join присоединяет игрока к сессии. Зарезервированное имя-проверка
// подтверждает существование сессии, не создавая записи.
func (s *SessionService) Join(ctx context.Context, sessionID uint, name string) (uint, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return 0, apperrors.ErrSessionNotFound
		}
		return 0, err
	}
	if !session.Active {
		return 0, apperrors.ErrNotActiveSession
	}
	if !session.InLobby() {
		return 0, apperrors.ErrSessionAlreadyBegun
	}

	if name == entity.ProbeName {
		return 0, nil
	}
	if name == "" {
		return 0, apperrors.New(apperrors.KindValidation, "Player name is required")
	}

	player := &entity.Player{
		SessionID: sessionID,
		Name:      name,
	}
	if err := s.sessionRepo.AddPlayer(player); err != nil {
		return 0, err
	}
	s.invalidateStatus(ctx, sessionID)

	log.Printf("[SessionService] Игрок %q (#%d) присоединился к сессии #%d", name, player.ID, sessionID)
	return player.ID, nil
}

// PlayerStatus возвращает состояние сессии глазами игрока. Эндпоинт
// работает и после завершения сессии: по флагам клиент решает, куда
// переходить (лобби, игра, результаты).
func (s *SessionService) PlayerStatus(ctx context.Context, playerID uint) (*PlayerState, error) {
	session, _, err := s.playerSession(ctx, playerID)
	if err != nil {
		return nil, err
	}
	return &PlayerState{
		Started:      session.Started(),
		Active:       session.Active,
		SessionEnded: !session.Active,
		Position:     session.Position,
	}, nil
}

// CurrentQuestion возвращает текущий вопрос без правильных ответов
// вместе со временем его старта
func (s *SessionService) CurrentQuestion(ctx context.Context, playerID uint) (*entity.Question, *time.Time, error) {
	session, _, err := s.playerSession(ctx, playerID)
	if err != nil {
		return nil, nil, err
	}
	if !session.Active {
		return nil, nil, apperrors.ErrNotActiveSession
	}
	if session.InLobby() {
		return nil, nil, apperrors.ErrSessionNotStarted
	}

	q := session.CurrentQuestion()
	if q == nil {
		return nil, nil, apperrors.ErrSessionNotStarted
	}
	sanitized := q.WithoutCorrectAnswers()
	return &sanitized, session.QuestionStartedAt, nil
}

// SubmitAnswer записывает (или перезаписывает) ответ игрока на текущий
// вопрос. Время считается по серверным часам от серверного времени старта
// вопроса; присланный клиентом timeRemaining принимается для совместимости,
// но на подсчет не влияет.
func (s *SessionService) SubmitAnswer(ctx context.Context, playerID uint, answers []string, timeRemaining int) error {
	session, player, err := s.playerSession(ctx, playerID)
	if err != nil {
		return err
	}
	if !session.Active {
		return apperrors.ErrNotActiveSession
	}
	if session.InLobby() {
		return apperrors.ErrSessionNotStarted
	}
	if len(answers) == 0 {
		return apperrors.New(apperrors.KindValidation, "At least one answer is required")
	}

	now := time.Now().UTC()
	if session.CountdownElapsed(now) {
		return apperrors.ErrAnswerClosed
	}

	q := session.CurrentQuestion()
	startedAt := s.questionStartedAt(ctx, session)

	record := &entity.AnswerRecord{
		PlayerID:          player.ID,
		SessionID:         session.ID,
		QuestionID:        q.QuestionID,
		QuestionIndex:     session.Position,
		Answers:           answers,
		Correct:           q.IsCorrectSubmission(answers),
		QuestionStartedAt: startedAt,
		AnsweredAt:        &now,
	}
	if err := s.sessionRepo.SaveAnswer(record); err != nil {
		return fmt.Errorf("failed to save answer: %w", err)
	}

	answeredKey := answerFlagKey(session.ID, player.ID, q.QuestionID)
	if err := s.cacheRepo.Set(ctx, answeredKey, "1", s.stateTTL); err != nil {
		log.Printf("[SessionService] WARNING: не удалось установить флаг ответа в Redis: %v", err)
	}

	log.Printf("[SessionService] Сессия #%d: игрок #%d ответил на вопрос #%d (timeRemaining=%d)",
		session.ID, player.ID, q.QuestionID, timeRemaining)
	return nil
}

// CorrectAnswers возвращает правильные ответы последнего закрытого вопроса:
// текущего, если его отсчет истек, иначе предыдущего. Открытый вопрос не
// раскрывается никогда. Второй вызывающий случай — опрос игрока, который
// после смены вопроса дозаписывает ответы предыдущего в локальный снапшот.
func (s *SessionService) CorrectAnswers(ctx context.Context, playerID uint) (int, []string, error) {
	session, _, err := s.playerSession(ctx, playerID)
	if err != nil {
		return 0, nil, err
	}
	if !session.Active {
		return 0, nil, apperrors.ErrNotActiveSession
	}
	if session.InLobby() {
		return 0, nil, apperrors.ErrSessionNotStarted
	}

	now := time.Now().UTC()
	if session.CountdownElapsed(now) {
		q := session.CurrentQuestion()
		return q.QuestionID, q.CorrectAnswers, nil
	}
	if session.Position > 0 {
		q := &session.Questions[session.Position-1]
		return q.QuestionID, q.CorrectAnswers, nil
	}
	return 0, nil, apperrors.ErrAnswersNotReady
}

// PlayerResults возвращает ответы игрока, выровненные по снапшоту вопросов:
// одна запись на вопрос, пустая там, где ответа не было. Доступно только
// после завершения сессии.
func (s *SessionService) PlayerResults(ctx context.Context, playerID uint) ([]entity.AnswerRecord, error) {
	session, player, err := s.playerSession(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if session.Active {
		return nil, apperrors.ErrAnswersNotReady
	}

	records, err := s.sessionRepo.GetPlayerAnswers(player.ID)
	if err != nil {
		return nil, err
	}
	return alignAnswers(records, session.Questions), nil
}

// playerSession возвращает сессию и игрока по идентификатору игрока
func (s *SessionService) playerSession(ctx context.Context, playerID uint) (*entity.Session, *entity.Player, error) {
	player, err := s.sessionRepo.GetPlayer(playerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrPlayerNotFound
		}
		return nil, nil, err
	}
	session, err := s.sessionRepo.GetByID(player.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrSessionNotFound
		}
		return nil, nil, err
	}
	return session, player, nil
}

func (s *SessionService) ownedSession(ctx context.Context, owner string, sessionID uint) (*entity.Session, error) {
	session, err := s.sessionRepo.GetByID(sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	if session.Owner != owner {
		return nil, apperrors.ErrSessionNotFound
	}
	return session, nil
}

// questionStartedAt берет время старта текущего вопроса из Redis;
// при промахе (истекший TTL, рестарт Redis) источником служит строка сессии
func (s *SessionService) questionStartedAt(ctx context.Context, session *entity.Session) *time.Time {
	val, err := s.cacheRepo.Get(ctx, questionStartKey(session.ID, session.Position))
	if err == nil {
		if t, parseErr := time.Parse(time.RFC3339Nano, val); parseErr == nil {
			return &t
		}
	}
	return session.QuestionStartedAt
}

func (s *SessionService) invalidateStatus(ctx context.Context, sessionID uint) {
	if err := s.cacheRepo.Delete(ctx, statusKey(sessionID)); err != nil {
		log.Printf("[SessionService] WARNING: не удалось сбросить кеш статуса сессии #%d: %v", sessionID, err)
	}
}

// alignAnswers выравнивает записи по снапшоту: одна запись на вопрос.
// Поиск по явному идентификатору вопроса, а не по позиции в выборке.
func alignAnswers(records []entity.AnswerRecord, questions entity.QuestionList) []entity.AnswerRecord {
	byID := make(map[int]entity.AnswerRecord, len(records))
	for _, rec := range records {
		byID[rec.QuestionID] = rec
	}

	aligned := make([]entity.AnswerRecord, 0, len(questions))
	for i, q := range questions {
		if rec, ok := byID[q.QuestionID]; ok {
			aligned = append(aligned, rec)
			continue
		}
		aligned = append(aligned, entity.AnswerRecord{
			QuestionID:    q.QuestionID,
			QuestionIndex: i,
			Answers:       entity.StringArray{},
		})
	}
	return aligned
}

func newSessionID() uint {
	max := big.NewInt(maxSessionID - minSessionID + 1)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand недоступен только при деградации ОС; откатываемся на время
		return uint(time.Now().UnixNano()%(maxSessionID-minSessionID)) + minSessionID
	}
	return uint(n.Int64()) + minSessionID
}

func statusKey(sessionID uint) string {
	return fmt.Sprintf("session:%d:status", sessionID)
}

func questionStartKey(sessionID uint, position int) string {
	return fmt.Sprintf("session:%d:pos:%d:started_at", sessionID, position)
}

func answerFlagKey(sessionID, playerID uint, questionID int) string {
	return fmt.Sprintf("session:%d:player:%d:answered:%d", sessionID, playerID, questionID)
}
