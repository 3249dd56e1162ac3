package worker

import (
	"fmt"

	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/tasks"
)

type redisTransactions interface {
	getDecodeTask(redisKey string) (*tasks.DecodeTask, error)
	getCachedResult(cacheKey string) (*decode.Path, error)
	cacheResult(cacheKey string, path decode.Path) error
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Decodes.Update(task.redisKey, func(task *tasks.DecodeTask) {
		task.TaskStatuses.Viterbi.Status = tasks.TaskStatusStarted
		task.TaskStatuses.Viterbi.Attempts += 1
		task.TaskStatuses.Viterbi.StartedAt = getFormattedNow()
		task.TaskStatuses.Viterbi.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Decodes.Update(task.redisKey, func(decodeTask *tasks.DecodeTask) {
		decodeTask.TaskStatuses.Viterbi.Status = tasks.TaskStatusCanceled
		decodeTask.TaskStatuses.Viterbi.StartedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.CompletedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.Attempts += 1
		decodeTask.TaskStatuses.Viterbi.ErrorMessages = append(
			decodeTask.TaskStatuses.Viterbi.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Decodes.Update(task.redisKey, func(decodeTask *tasks.DecodeTask) {
		decodeTask.TaskStatuses.Viterbi.Status = tasks.TaskStatusCompletedFailure
		decodeTask.TaskStatuses.Viterbi.StartedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.CompletedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.Attempts += 1
		decodeTask.TaskStatuses.Viterbi.ErrorMessages = append(
			decodeTask.TaskStatuses.Viterbi.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				decodeTask.TaskStatuses.Viterbi.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Decodes.Update(task.redisKey, func(decodeTask *tasks.DecodeTask) {
		decodeTask.TaskStatuses.Viterbi.Status = tasks.TaskStatusFailed
		decodeTask.TaskStatuses.Viterbi.CompletedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.ErrorMessages = append(decodeTask.TaskStatuses.Viterbi.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Decodes.Update(task.redisKey, func(decodeTask *tasks.DecodeTask) {
		if !decodeTask.TaskStatuses.Viterbi.Status.Complete() {
			decodeTask.TaskStatuses.Viterbi.Status = tasks.TaskStatusCompletedSuccess
		}
		decodeTask.TaskStatuses.Viterbi.CompletedAt = getFormattedNow()
		decodeTask.TaskStatuses.Viterbi.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getDecodeTask(redisKey string) (*tasks.DecodeTask, error) {
	return wrapper.tasksClient.Decodes.Get(redisKey)
}

func (wrapper *redisClientWrapper) getCachedResult(cacheKey string) (*decode.Path, error) {
	return wrapper.tasksClient.Cache.Get(cacheKey)
}

func (wrapper *redisClientWrapper) cacheResult(cacheKey string, path decode.Path) error {
	return wrapper.tasksClient.Cache.Put(cacheKey, path)
}
