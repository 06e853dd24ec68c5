package cluster

import (
	"fmt"
	"strings"

	"github.com/src-d/go-crossquery/query"
	"github.com/src-d/go-crossquery/query/plan"
)

// StageKind identifies the kind of a job stage.
type StageKind byte

const (
	// StageScan reads a named dataset.
	StageScan StageKind = iota + 1
	// StageFilter drops rows not matching a condition.
	StageFilter
	// StageGroup shuffles by the grouping columns and aggregates.
	StageGroup
	// StageSort totally orders the rows.
	StageSort
	// StageLimit truncates the rows.
	StageLimit
	// StageJoin equi-joins the output of two sub-jobs.
	StageJoin
)

func (k StageKind) String() string {
	switch k {
	case StageScan:
		return "scan"
	case StageFilter:
		return "filter"
	case StageGroup:
		return "group"
	case StageSort:
		return "sort"
	case StageLimit:
		return "limit"
	case StageJoin:
		return "join"
	default:
		return "invalid StageKind"
	}
}

// Stage is one step of a staged job. Only the fields relevant to its
// kind are set.
type Stage struct {
	Kind       StageKind
	Table      string
	Condition  query.Expression
	Grouping   []query.Expression
	Aggregates []query.Expression
	SortFields []plan.SortField
	Limit      int64
	Join       *JoinStage
}

// JoinStage describes an equi-join of two sub-jobs.
type JoinStage struct {
	Left     *Job
	Right    *Job
	LeftKey  string
	RightKey string
}

func (s Stage) describe() string {
	switch s.Kind {
	case StageScan:
		return fmt.Sprintf("scan(%s)", s.Table)
	case StageFilter:
		return fmt.Sprintf("filter(%s)", s.Condition)
	case StageGroup:
		var grouping = make([]string, len(s.Grouping))
		for i, e := range s.Grouping {
			grouping[i] = e.String()
		}
		var aggregates = make([]string, len(s.Aggregates))
		for i, e := range s.Aggregates {
			aggregates[i] = e.String()
		}
		return fmt.Sprintf("group(%s)[%s]",
			strings.Join(grouping, ", "), strings.Join(aggregates, ", "))
	case StageSort:
		var fields = make([]string, len(s.SortFields))
		for i, f := range s.SortFields {
			fields[i] = fmt.Sprintf("%s %s", f.Column, f.Order)
		}
		return fmt.Sprintf("sort(%s)", strings.Join(fields, ", "))
	case StageLimit:
		return fmt.Sprintf("limit(%d)", s.Limit)
	case StageJoin:
		return fmt.Sprintf("join(%s, %s, %s = %s)",
			s.Join.Left, s.Join.Right, s.Join.LeftKey, s.Join.RightKey)
	default:
		return s.Kind.String()
	}
}

// Job is the native query of the cluster backend: an ordered list of
// stages the driver distributes over its workers.
type Job struct {
	Stages []Stage
	schema query.Schema
}

// Schema returns the columns the job produces.
func (j *Job) Schema() query.Schema { return j.schema }

func (j *Job) String() string {
	var stages = make([]string, len(j.Stages))
	for i, s := range j.Stages {
		stages[i] = s.describe()
	}
	return strings.Join(stages, " | ")
}

// with returns a new job extending this one with a stage, so shared
// plan prefixes never share stage slices.
func (j *Job) with(s Stage, schema query.Schema) *Job {
	stages := make([]Stage, 0, len(j.Stages)+1)
	stages = append(stages, j.Stages...)
	stages = append(stages, s)
	return &Job{Stages: stages, schema: schema}
}
