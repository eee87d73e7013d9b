package store

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// DefaultUserID is the single local learner.
const DefaultUserID int64 = 1

type seedLesson struct {
	name, description string
	theory            string
	quiz              Quiz
	typing            Typing
	exercise          Exercise
}

type seedModule struct {
	name, description string
	lessons           []seedLesson
}

var starterCatalog = []seedModule{
	{
		name:        "Les bases de Python",
		description: "Premiers pas avec Python : affichage, variables et types.",
		lessons: []seedLesson{
			{
				name:        "Introduction à Python",
				description: "Découvrir Python et écrire son premier programme.",
				theory: "Python est un langage de programmation interprété, lisible et polyvalent.\n\n" +
					"La fonction print() affiche du texte à l'écran :\n\n" +
					"    print('Bonjour')\n\n" +
					"Les chaînes de caractères s'écrivent entre guillemets simples ou doubles.",
				quiz: Quiz{
					Question: "Quelle fonction affiche du texte à l'écran ?\nA) input()\nB) print()\nC) len()",
					Answer:   "B",
				},
				typing:   Typing{Text: "print('Bonjour, Python !')"},
				exercise: Exercise{Prompt: "Affichez le texte Hello, World! avec print().", Solution: "print('Hello, World!')"},
			},
			{
				name:        "Variables",
				description: "Stocker des valeurs dans des variables.",
				theory: "Une variable associe un nom à une valeur :\n\n" +
					"    age = 25\n    nom = 'Alice'\n\n" +
					"Le signe = est l'opérateur d'affectation. Un nom de variable ne commence jamais par un chiffre.",
				quiz: Quiz{
					Question: "Quel nom de variable est valide ?\nA) 2nom\nB) mon-nom\nC) mon_nom",
					Answer:   "C",
				},
				typing: Typing{Text: "nom = 'Alice'"},
				exercise: Exercise{
					Prompt:   "Créez une variable age valant 25, puis affichez-la.",
					Solution: "age = 25\nprint(age)",
				},
			},
			{
				name:        "Types de données",
				description: "Entiers, décimaux, chaînes et booléens.",
				theory: "Python possède plusieurs types de base :\n\n" +
					"    int    -> 42\n    float  -> 3.14\n    str    -> 'texte'\n    bool   -> True / False\n\n" +
					"La fonction type() renvoie le type d'une valeur.",
				quiz: Quiz{
					Question: "Quel est le type de 3.14 ?\nA) int\nB) float\nC) str",
					Answer:   "B",
				},
				typing: Typing{Text: "print(type(42))"},
				exercise: Exercise{
					Prompt:   "Affichez le type de la valeur 3.14.",
					Solution: "print(type(3.14))",
				},
			},
			{
				name:        "Opérateurs",
				description: "Calculer avec les opérateurs arithmétiques.",
				theory: "Les opérateurs arithmétiques sont + - * / // % et **.\n\n" +
					"    7 // 2  -> 3  (division entière)\n    7 % 2   -> 1  (reste)\n    2 ** 3  -> 8  (puissance)",
				quiz: Quiz{
					Question: "Que vaut 7 % 2 ?\nA) 1\nB) 3\nC) 3.5",
					Answer:   "A",
				},
				typing: Typing{Text: "resultat = 2 ** 3"},
				exercise: Exercise{
					Prompt:   "Calculez 10 divisé par 3 (division entière) dans q, puis affichez q.",
					Solution: "q = 10 // 3\nprint(q)",
				},
			},
		},
	},
	{
		name:        "Structures de contrôle",
		description: "Conditions et boucles.",
	},
	{
		name:        "Fonctions",
		description: "Définir et appeler des fonctions.",
	},
}

// Seed inserts the starter catalog when the modules table is empty, along
// with an in_progress row for the first lesson of the default user. It
// reports whether anything was written.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	var seeded bool
	err := s.Update(ctx, func(r *Repo) error {
		n, err := r.CountModules(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			return nil
		}

		var firstLesson, firstModule int64
		for _, sm := range starterCatalog {
			moduleID, err := r.AddModule(ctx, Module{Name: sm.name, Description: sm.description})
			if err != nil {
				return err
			}
			for _, sl := range sm.lessons {
				lessonID, err := seedLessonRows(ctx, r, moduleID, sl)
				if err != nil {
					return fmt.Errorf("seed lesson %q: %w", sl.name, err)
				}
				if firstLesson == 0 {
					firstLesson, firstModule = lessonID, moduleID
				}
			}
		}

		if firstLesson != 0 {
			err := r.UpsertLessonProgress(ctx, LessonProgress{
				UserID:   DefaultUserID,
				ModuleID: firstModule,
				LessonID: firstLesson,
				Status:   StatusInProgress,
			})
			if err != nil {
				return err
			}
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if seeded {
		s.log.Info("seeded starter catalog", zap.Int("modules", len(starterCatalog)))
	}
	return seeded, nil
}

func seedLessonRows(ctx context.Context, r *Repo, moduleID int64, sl seedLesson) (int64, error) {
	lessonID, err := r.AddLesson(ctx, Lesson{ModuleID: moduleID, Name: sl.name, Description: sl.description})
	if err != nil {
		return 0, err
	}

	tasks := []Task{
		{Name: "Théorie", Type: TypeTheory, Description: "Lisez la leçon.", Content: sl.theory},
		{Name: "Quiz", Type: TypeQuiz, Description: "Répondez à la question."},
		{Name: "Saisie", Type: TypeTyping, Description: "Recopiez le texte exactement."},
		{Name: "Exercice", Type: TypeExercise, Description: "Écrivez le code demandé."},
	}
	for _, t := range tasks {
		t.LessonID = lessonID
		if _, err := r.AddTask(ctx, t); err != nil {
			return 0, err
		}
	}

	q := sl.quiz
	q.LessonID = lessonID
	if _, err := r.AddQuiz(ctx, q); err != nil {
		return 0, err
	}
	ty := sl.typing
	ty.LessonID = lessonID
	if _, err := r.AddTyping(ctx, ty); err != nil {
		return 0, err
	}
	ex := sl.exercise
	ex.LessonID = lessonID
	if _, err := r.AddExercise(ctx, ex); err != nil {
		return 0, err
	}
	return lessonID, nil
}
