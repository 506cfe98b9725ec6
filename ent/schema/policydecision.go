package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// PolicyDecision holds the schema definition for the PolicyDecision entity:
// one pkg/policy.EngineResult, recording every policy's verdict for a
// single tool call.
type PolicyDecision struct {
	ent.Schema
}

// Fields of the PolicyDecision.
func (PolicyDecision) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("decision_id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable(),
		field.String("tool_name").
			Immutable(),
		field.String("target").
			Optional().
			Nillable(),
		field.Bool("allowed"),
		field.Enum("blocking_policy").
			Optional().
			Nillable().
			Values("velocity", "quarantine", "rate_limit", "path", "trust"),
		field.Text("blocking_reason").
			Optional().
			Nillable(),
		field.JSON("results", []map[string]interface{}{}).
			Comment("Full per-policy Result list, decision+policy+reason each"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the PolicyDecision.
func (PolicyDecision) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", LoopRun.Type).
			Ref("policy_decisions").
			Field("run_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the PolicyDecision.
func (PolicyDecision) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id", "created_at"),
		index.Fields("allowed"),
	}
}
