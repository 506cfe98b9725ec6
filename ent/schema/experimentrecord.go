package schema

import (
	"time"

	"entgo.io/ent"
	"entgo.io/ent/schema/edge"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ExperimentRecord holds the schema definition for the ExperimentRecord
// entity: a persisted summary of one pkg/shadowvcs.Experiment comparison,
// linked back to the run that produced it. pkg/shadowvcs itself stays
// in-memory per spec §6; this is the durable audit trail a caller opts
// into by wiring pkg/store into its loop.
type ExperimentRecord struct {
	ent.Schema
}

// Fields of the ExperimentRecord.
func (ExperimentRecord) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			StorageKey("experiment_id").
			Unique().
			Immutable(),
		field.String("run_id").
			Immutable(),
		field.String("branch_a").
			Comment("Shadow branch name for variant A"),
		field.String("branch_b").
			Comment("Shadow branch name for variant B"),
		field.String("winner").
			Optional().
			Nillable().
			Comment("branch_a, branch_b, or empty if undecided"),
		field.JSON("comparison", map[string]interface{}{}).
			Comment("Encoded shadowvcs.ExperimentComparison"),
		field.Time("created_at").
			Default(time.Now).
			Immutable(),
	}
}

// Edges of the ExperimentRecord.
func (ExperimentRecord) Edges() []ent.Edge {
	return []ent.Edge{
		edge.From("run", LoopRun.Type).
			Ref("experiment_records").
			Field("run_id").
			Unique().
			Required().
			Immutable(),
	}
}

// Indexes of the ExperimentRecord.
func (ExperimentRecord) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("run_id", "created_at"),
	}
}
