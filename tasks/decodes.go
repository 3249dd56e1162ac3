package tasks

import (
	"encoding/json"

	jsonpatch "github.com/evanphx/json-patch"

	"seqmark.io/hmm/redis"
)

const TasksDB redis.DB = 0

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// DecodeTask is the record describing one decode request: which model to
// use, where the observation sequence lives, and the status of the viterbi
// step. The stored document may carry sections owned by other services;
// updates must not clobber them.
type DecodeTask struct {
	ModelName          string             `json:"model_name"`
	ObservationFileKey string             `json:"observation_file_key"`
	UserCanceled       bool               `json:"user_canceled"`
	TaskStatuses       DecodeTaskStatuses `json:"task_statuses"`
}

type DecodeTaskStatuses struct {
	Viterbi DecodeTaskInfo `json:"viterbi"`
}

type DecodeTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	ErrorMessages  []string   `json:"error_messages"`
}

type DecodeTasks struct {
	client redis.Client
}

func (tasks DecodeTasks) Get(redisKey string) (*DecodeTask, error) {
	var task DecodeTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update applies updateFunc to the stored record under a distributed lock.
// Only the fields updateFunc actually changed are merge-patched into the
// stored document, so sections written by other services survive.
func (tasks DecodeTasks) Update(redisKey string, updateFunc func(task *DecodeTask)) (err error) {
	releaseLock, err := tasks.client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = releaseLock()
			return
		}
		err = releaseLock()
	}()
	stored, err := tasks.client.GetRaw(redisKey)
	if err != nil {
		return err
	}
	merged, err := applyUpdate(stored, updateFunc)
	if err != nil {
		return err
	}
	return tasks.client.SetRaw(redisKey, merged, 0)
}

func applyUpdate(stored []byte, updateFunc func(task *DecodeTask)) ([]byte, error) {
	var task DecodeTask
	if err := json.Unmarshal(stored, &task); err != nil {
		return nil, err
	}
	before, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	updateFunc(&task)
	after, err := json.Marshal(task)
	if err != nil {
		return nil, err
	}
	patch, err := jsonpatch.CreateMergePatch(before, after)
	if err != nil {
		return nil, err
	}
	return jsonpatch.MergePatch(stored, patch)
}
