package model

import (
	"encoding/json"
	"time"
)

type Task struct {
	ID         int64     `json:"id"`
	Desc       string    `json:"desc"`
	EstimateAt Timestamp `json:"estimateAt"`
	DoneAt     Timestamp `json:"doneAt"`
}

// Done reports whether the server recorded a completion time.
func (t Task) Done() bool {
	return !t.DoneAt.IsNull()
}

// TaskInput is the body of create and edit requests.
type TaskInput struct {
	Desc       string    `json:"desc"`
	EstimateAt time.Time `json:"-"`
}

func (in TaskInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Desc       string `json:"desc"`
		EstimateAt string `json:"estimateAt"`
	}{in.Desc, FormatISO(in.EstimateAt)})
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *TaskInput) UnmarshalJSON(b []byte) error {
	var raw struct {
		Desc       string    `json:"desc"`
		EstimateAt Timestamp `json:"estimateAt"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	in.Desc = raw.Desc
	in.EstimateAt = time.Time{}
	if raw.EstimateAt.Valid {
		in.EstimateAt = raw.EstimateAt.Time
	}
	return nil
}
