package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// StepExecution holds the schema definition for the StepExecution entity:
// one pkg/looprun.StepResult, recording a single step attempt within a run
// (including retried attempts, which get their own row).
type StepExecution struct {
	ent.Schema
}

// Fields of the StepExecution.
func (StepExecution) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("step_execution_id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable(),
		field.String("step_name").
			Immutable(),
		field.Enum("step_type").
			Values("tool", "llm", "hybrid"),
		field.Int("attempt").
			Default(0).
			Comment("0 = first try, >0 = retry number"),
		field.Bool("success"),
		field.Text("output").
			Optional().
			Nillable().
			Comment("JSON-encoded step output on success"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Int("tokens_in").
			Default(0),
		field.Int("tokens_out").
			Default(0),
		field.Int("duration_ms").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the StepExecution.
func (StepExecution) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", LoopRun.Type).
			Ref("step_executions").
			Field("run_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the StepExecution.
func (StepExecution) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id", "created_at"),
		index.Fields("step_name"),
	}
}
