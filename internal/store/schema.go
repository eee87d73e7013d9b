package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Column layouts mirror the tables shipped with the first desktop release.
// Columns added since then (tasks.task_type, tasks.content,
// progression.unlocked) carry defaults so migration can add them in place.
var (
	ModulesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Nullable: true},
	}
	ModulesTable = &schema.Table{
		Name:       "modules",
		Columns:    ModulesColumns,
		PrimaryKey: []*schema.Column{ModulesColumns[0]},
	}

	LessonsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "module_id", Type: field.TypeInt, Nullable: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Nullable: true},
	}
	LessonsTable = &schema.Table{
		Name:       "lessons",
		Columns:    LessonsColumns,
		PrimaryKey: []*schema.Column{LessonsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "lessons_modules_lessons",
				Columns:    []*schema.Column{LessonsColumns[1]},
				RefColumns: []*schema.Column{ModulesColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "lesson_module_id", Columns: []*schema.Column{LessonsColumns[1]}},
		},
	}

	TasksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "lesson_id", Type: field.TypeInt, Nullable: true},
		{Name: "name", Type: field.TypeString},
		{Name: "description", Type: field.TypeString, Nullable: true},
		{Name: "task_type", Type: field.TypeString, Nullable: true, Default: string(TypeTheory)},
		{Name: "content", Type: field.TypeString, Nullable: true},
	}
	TasksTable = &schema.Table{
		Name:       "tasks",
		Columns:    TasksColumns,
		PrimaryKey: []*schema.Column{TasksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "tasks_lessons_tasks",
				Columns:    []*schema.Column{TasksColumns[1]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
		Indexes: []*schema.Index{
			{Name: "task_lesson_id", Columns: []*schema.Column{TasksColumns[1]}},
		},
	}

	QuizColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "lesson_id", Type: field.TypeInt, Nullable: true},
		{Name: "question", Type: field.TypeString},
		{Name: "answer", Type: field.TypeString, Nullable: true},
	}
	QuizTable = &schema.Table{
		Name:       "quiz",
		Columns:    QuizColumns,
		PrimaryKey: []*schema.Column{QuizColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "quiz_lessons_quiz",
				Columns:    []*schema.Column{QuizColumns[1]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}

	ExerciseColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "lesson_id", Type: field.TypeInt, Nullable: true},
		{Name: "prompt", Type: field.TypeString},
		{Name: "solution", Type: field.TypeString, Nullable: true},
	}
	ExerciseTable = &schema.Table{
		Name:       "exercise",
		Columns:    ExerciseColumns,
		PrimaryKey: []*schema.Column{ExerciseColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "exercise_lessons_exercise",
				Columns:    []*schema.Column{ExerciseColumns[1]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}

	TypingColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "lesson_id", Type: field.TypeInt, Nullable: true},
		{Name: "text", Type: field.TypeString},
	}
	TypingTable = &schema.Table{
		Name:       "typing",
		Columns:    TypingColumns,
		PrimaryKey: []*schema.Column{TypingColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "typing_lessons_typing",
				Columns:    []*schema.Column{TypingColumns[1]},
				RefColumns: []*schema.Column{LessonsColumns[0]},
				OnDelete:   schema.NoAction,
			},
		},
	}

	// quiz_id, exercise_id and typing_id are unused leftovers kept so old
	// databases and new ones share one layout.
	ProgressionColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "user_id", Type: field.TypeInt, Nullable: true},
		{Name: "module_id", Type: field.TypeInt, Nullable: true},
		{Name: "lesson_id", Type: field.TypeInt, Nullable: true},
		{Name: "task_id", Type: field.TypeInt, Nullable: true},
		{Name: "quiz_id", Type: field.TypeInt, Nullable: true},
		{Name: "exercise_id", Type: field.TypeInt, Nullable: true},
		{Name: "typing_id", Type: field.TypeInt, Nullable: true},
		{Name: "status", Type: field.TypeString, Nullable: true},
		{Name: "unlocked", Type: field.TypeBool, Default: false},
	}
	ProgressionTable = &schema.Table{
		Name:       "progression",
		Columns:    ProgressionColumns,
		PrimaryKey: []*schema.Column{ProgressionColumns[0]},
		// Not unique: databases from the first release may already hold
		// duplicate rows. UpsertTaskProgress keeps one row per pair by
		// updating before inserting on the single pooled connection.
		Indexes: []*schema.Index{
			{Name: "progression_user_id_task_id", Columns: []*schema.Column{ProgressionColumns[1], ProgressionColumns[4]}},
			{Name: "progression_user_id_lesson_id", Columns: []*schema.Column{ProgressionColumns[1], ProgressionColumns[3]}},
		},
	}

	AttemptsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Unique: true},
		{Name: "user_id", Type: field.TypeInt},
		{Name: "task_id", Type: field.TypeInt},
		{Name: "success", Type: field.TypeBool},
		{Name: "input", Type: field.TypeString, Size: 2147483647},
		{Name: "message", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	AttemptsTable = &schema.Table{
		Name:       "attempts",
		Columns:    AttemptsColumns,
		PrimaryKey: []*schema.Column{AttemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_user_id_created_at", Columns: []*schema.Column{AttemptsColumns[1], AttemptsColumns[6]}},
		},
	}

	// Tables lists every table managed by auto-migration.
	Tables = []*schema.Table{
		ModulesTable,
		LessonsTable,
		TasksTable,
		QuizTable,
		ExerciseTable,
		TypingTable,
		ProgressionTable,
		AttemptsTable,
	}
)

func init() {
	LessonsTable.ForeignKeys[0].RefTable = ModulesTable
	TasksTable.ForeignKeys[0].RefTable = LessonsTable
	QuizTable.ForeignKeys[0].RefTable = LessonsTable
	ExerciseTable.ForeignKeys[0].RefTable = LessonsTable
	TypingTable.ForeignKeys[0].RefTable = LessonsTable
}
