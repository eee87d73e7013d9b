// Package validator checks learner submissions against task content and
// records the outcome through the progression engine.
package validator

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/pylearn/internal/progression"
	"github.com/abhisek/pylearn/internal/store"
)

// Feedback messages shown to the learner.
const (
	MsgNotFound      = "Tâche non trouvée."
	MsgLocked        = "Cette tâche est verrouillée. Terminez d'abord la tâche précédente."
	MsgTheoryRead    = "Théorie marquée comme lue ! ✓"
	MsgQuizEmpty     = "Veuillez entrer une réponse."
	MsgQuizCorrect   = "Bonne réponse ! ✓"
	MsgQuizWrong     = "Incorrect. La bonne réponse était: %s"
	MsgTypingEmpty   = "Veuillez saisir le texte demandé."
	MsgTypingCorrect = "Parfait ! Texte correct ! ✓"
	MsgTypingClose   = "Presque ! Vérifiez les petites différences."
	MsgTypingWrong   = "Le texte ne correspond pas. Réessayez."
	MsgExerciseEmpty = "Veuillez écrire votre code."
	MsgExerciseOK    = "Excellent ! Code correct ! ✓"
	MsgExerciseClose = "Presque correct ! Vérifiez votre syntaxe."
	MsgExerciseWrong = "Le code ne correspond pas à la solution attendue."
	MsgUnknownType   = "Type de tâche inconnu."
)

// Near-miss thresholds.
const (
	DefaultTypingNear = 0.8
	DefaultCodeNear   = 0.7
)

// Result is the verdict on one submission.
type Result struct {
	Success    bool
	Message    string
	UnlockNext bool
	Locked     bool
	NotFound   bool
	Similarity float64
}

// Config tunes near-miss detection.
type Config struct {
	Scorer            Scorer
	TypingThreshold   float64
	ExerciseThreshold float64
}

// DefaultConfig returns the positional scorer with the standard thresholds.
func DefaultConfig() Config {
	return Config{
		Scorer:            Positional{},
		TypingThreshold:   DefaultTypingNear,
		ExerciseThreshold: DefaultCodeNear,
	}
}

// Validator checks submissions and advances progression.
type Validator struct {
	st     *store.Store
	engine *progression.Engine
	cfg    Config
	log    *zap.Logger
}

// New creates a Validator. Zero config fields fall back to defaults.
func New(st *store.Store, engine *progression.Engine, cfg Config, log *zap.Logger) *Validator {
	def := DefaultConfig()
	if cfg.Scorer == nil {
		cfg.Scorer = def.Scorer
	}
	if cfg.TypingThreshold <= 0 {
		cfg.TypingThreshold = def.TypingThreshold
	}
	if cfg.ExerciseThreshold <= 0 {
		cfg.ExerciseThreshold = def.ExerciseThreshold
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Validator{st: st, engine: engine, cfg: cfg, log: log}
}

// Validate checks input against the task and records the outcome. A
// missing or locked task yields an unsuccessful Result and writes nothing.
// Every other outcome updates progression and appends an attempt in one
// transaction.
func (v *Validator) Validate(ctx context.Context, taskID, userID int64, input string) (Result, error) {
	var res Result
	err := v.st.Update(ctx, func(r *store.Repo) error {
		content, err := progression.LoadContent(ctx, r, taskID)
		if err != nil {
			return err
		}
		if content == nil {
			res = Result{NotFound: true, Message: MsgNotFound}
			return nil
		}

		tx := v.engine.In(r)
		state, err := tx.TaskStatus(ctx, taskID, userID)
		if err != nil {
			return err
		}
		if !state.Unlocked {
			res = Result{Locked: true, Message: MsgLocked}
			return nil
		}

		res = v.Check(content, input)
		if res.Success {
			tr, err := tx.MarkCompleted(ctx, taskID, userID)
			if err != nil {
				return err
			}
			res.UnlockNext = tr.UnlockedNext != 0
		} else if _, err := tx.MarkFailed(ctx, taskID, userID); err != nil {
			return err
		}

		return r.AppendAttempt(ctx, &store.Attempt{
			UserID:  userID,
			TaskID:  taskID,
			Success: res.Success,
			Input:   input,
			Message: res.Message,
		})
	})
	if err != nil {
		return Result{}, fmt.Errorf("validate task %d: %w", taskID, err)
	}

	v.log.Debug("task validated",
		zap.Int64("task_id", taskID),
		zap.Int64("user_id", userID),
		zap.Bool("success", res.Success),
		zap.Bool("locked", res.Locked),
		zap.Float64("similarity", res.Similarity))
	return res, nil
}

// Check grades input against loaded task content without touching
// progression.
func (v *Validator) Check(c *progression.Content, input string) Result {
	switch c.Task.Type {
	case store.TypeTheory:
		return Result{Success: true, Message: MsgTheoryRead}
	case store.TypeQuiz:
		return v.checkQuiz(c.Quiz, input)
	case store.TypeTyping:
		return v.checkTyping(c.Typing, input)
	case store.TypeExercise:
		return v.checkExercise(c.Exercise, input)
	default:
		return Result{Message: MsgUnknownType}
	}
}

func (v *Validator) checkQuiz(q *store.Quiz, input string) Result {
	answer := ""
	if q != nil {
		answer = strings.TrimSpace(q.Answer)
	}
	given := strings.TrimSpace(input)
	if given == "" {
		return Result{Message: MsgQuizEmpty}
	}
	if strings.EqualFold(given, answer) {
		return Result{Success: true, Message: MsgQuizCorrect}
	}
	return Result{Message: fmt.Sprintf(MsgQuizWrong, answer)}
}

func (v *Validator) checkTyping(t *store.Typing, input string) Result {
	target := ""
	if t != nil {
		target = strings.TrimSpace(t.Text)
	}
	given := strings.TrimSpace(input)
	if given == "" {
		return Result{Message: MsgTypingEmpty}
	}
	if given == target {
		return Result{Success: true, Message: MsgTypingCorrect, Similarity: 1}
	}
	sim := v.cfg.Scorer.Score(target, given)
	if sim > v.cfg.TypingThreshold {
		return Result{Message: MsgTypingClose, Similarity: sim}
	}
	return Result{Message: MsgTypingWrong, Similarity: sim}
}

func (v *Validator) checkExercise(e *store.Exercise, input string) Result {
	solution := ""
	if e != nil {
		solution = NormalizeCode(e.Solution)
	}
	given := NormalizeCode(input)
	if given == "" {
		return Result{Message: MsgExerciseEmpty}
	}
	if given == solution {
		return Result{Success: true, Message: MsgExerciseOK, Similarity: 1}
	}
	sim := v.cfg.Scorer.Score(solution, given)
	if sim > v.cfg.ExerciseThreshold {
		return Result{Message: MsgExerciseClose, Similarity: sim}
	}
	return Result{Message: MsgExerciseWrong, Similarity: sim}
}
