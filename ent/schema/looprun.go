package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LoopRun holds the schema definition for the LoopRun entity: one execution
// of a pkg/looprun.AgentLoop from entry to terminal status.
type LoopRun struct {
	ent.Schema
}

// Fields of the LoopRun.
func (LoopRun) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("run_id").
			Unique().
			Immutable(),
		field.String("loop_name").
			Comment("AgentLoop.Name this run executed"),
		field.Text("input").
			Comment("JSON-encoded LoopContext.Input"),
		field.Enum("status").
			Values("pending", "running", "success", "failed", "timeout", "budget_exceeded", "max_iterations").
			Default("pending"),
		field.Text("final_output").
			Optional().
			Nillable().
			Comment("JSON-encoded LoopContext.Last on completion"),
		field.String("error_message").
			Optional().
			Nillable(),
		field.Int("iterations").
			Optional().
			Nillable(),
		field.Int("total_tokens").
			Optional().
			Nillable(),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
		field.Time("started_at").
			Optional().
			Nillable(),
		field.Time("completed_at").
			Optional().
			Nillable(),
		field.Time("last_heartbeat_at").
			Optional().
			Nillable().
			Comment("For pkg/runqueue orphan detection"),
		field.String("worker_id").
			Optional().
			Nillable().
			Comment("For multi-replica coordination"),
		field.Time("deleted_at").
			Optional().
			Nillable().
			Comment("Soft delete for retention policy"),
	}
}

// Edges of the LoopRun.
func (LoopRun) Edges() []ent.Edge {
	return []ent.Edge{
		edge.To("step_executions", StepExecution.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("policy_decisions", PolicyDecision.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
		edge.To("experiment_records", ExperimentRecord.Type).
			Annotations(entsql.OnDelete(entsql.Cascade)),
	}
}

// Indexes of the LoopRun.
func (LoopRun) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("status"),
		index.Fields("loop_name"),
		index.Fields("status", "created_at"),
		index.Fields("status", "last_heartbeat_at"),
		index.Fields("deleted_at").
			Annotations(entsql.IndexWhere("deleted_at IS NOT NULL")),
	}
}

// Annotations for PostgreSQL-specific features.
func (LoopRun) Annotations() []schema.Annotation {
	return []schema.Annotation{}
}
