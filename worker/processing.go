package worker

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/tasks"
	"seqmark.io/hmm/utils"
)

type Message struct {
	WorkType string `json:"work_type"`
	RedisKey string `json:"redis_key"`
	Sender   string `json:"sender"`
	Version  string `json:"version"`
}

type Task struct {
	delivery   *amqp.Delivery
	decodeTask *tasks.DecodeTask
	message    *Message
	redisKey   string
	hmmLogger  *zerolog.Logger
}

// DecodeResult is the document uploaded to S3 for a finished decode.
type DecodeResult struct {
	ModelName   string      `json:"model_name"`
	Observation []string    `json:"observation"`
	Path        decode.Path `json:"path"`
	FromCache   bool        `json:"from_cache"`
}

func (worker *Worker) processMessage(delivery *amqp.Delivery) {
	task, err := worker.createTask(delivery)
	rejectLogger := worker.hmmLogger.With().Str("message_id", delivery.MessageId).Logger()
	if err != nil {
		worker.hmmLogger.Err(err).
			Str("message_id", delivery.MessageId).
			Str("tid", string(delivery.Body)).
			Msg("Failed to create task for delivery")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.processTask(task); err != nil {
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.pingSequencer(task, *task.message); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while sending message to sequencer queue")
		worker.rmq.rejectDelivery(delivery, &rejectLogger)
		return
	}
	if err = worker.rmq.acknowledgeDelivery(delivery); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to acknowledge delivery")
	}
	task.hmmLogger.Info().Msg("Finished processing RMQ message")
}

func (worker *Worker) createTask(delivery *amqp.Delivery) (*Task, error) {
	var message Message
	err := json.Unmarshal(delivery.Body, &message)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal message, got error %w", err)
	}
	decodeTask, err := worker.redis.getDecodeTask(message.RedisKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query decode task for message, got error %w", err)
	}
	taskLogger := worker.hmmLogger.With().Str("tid", message.RedisKey).Logger()
	task := Task{
		delivery:   delivery,
		decodeTask: decodeTask,
		redisKey:   message.RedisKey,
		message:    &message,
		hmmLogger:  &taskLogger,
	}
	return &task, nil
}

func (worker *Worker) processTask(task *Task) error {
	shouldPerform, err := worker.shouldPerformTask(task)
	if err != nil {
		task.hmmLogger.Err(err).
			Msg("Got error while trying to decide whether to run task")
		return err
	}
	if !shouldPerform {
		return nil
	}
	if err = worker.redis.onTaskStarted(task); err != nil {
		task.hmmLogger.Err(err).Msg("Failed to update task info")
		return fmt.Errorf("failed to update TaskInfo: %w", err)
	}
	if err = worker.runDecode(task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while running decode")
		if err = worker.redis.onTaskFailedWithError(task, err); err != nil {
			return err
		}
		return nil
	}
	task.hmmLogger.Info().Msg("Saved results, marking task as complete")
	if err = worker.redis.onTaskComplete(task); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to mark task as complete")
		return err
	}
	return nil
}

func (worker *Worker) runDecode(task *Task) (err error) {
	defer utils.RecoverWithError(&err)
	task.hmmLogger.Info().Msgf("Processing message from RMQ, attempt # %d", task.decodeTask.TaskStatuses.Viterbi.Attempts)
	m, err := worker.catalog.Get(task.decodeTask.ModelName)
	if err != nil {
		task.hmmLogger.Err(err).Msg("Requested model is not loaded")
		return err
	}
	data, err := worker.s3.getObservationData(task)
	if err != nil {
		task.hmmLogger.Err(err).Caller().Msg("Could not fetch observation data from s3")
		return fmt.Errorf("failed fetch data from s3: %w", err)
	}
	observed := utils.SplitSymbols(string(data))

	cacheKey := tasks.CacheKey(m.Fingerprint(), observed)
	path, err := worker.redis.getCachedResult(cacheKey)
	if err != nil {
		task.hmmLogger.Err(err).Msg("Result cache lookup failed, decoding anyway")
		path = nil
	}
	fromCache := path != nil
	if !fromCache {
		decoded, err := decode.ViterbiPath(m, observed)
		if err != nil {
			return err
		}
		path = &decoded
		if err := worker.redis.cacheResult(cacheKey, decoded); err != nil {
			task.hmmLogger.Err(err).Msg("Failed to cache decode result")
		}
	}
	result := DecodeResult{
		ModelName:   task.decodeTask.ModelName,
		Observation: observed,
		Path:        *path,
		FromCache:   fromCache,
	}
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}
	task.hmmLogger.Info().Msg("Finished decode, saving results to s3")
	if err = worker.s3.saveResultsFile(task, string(b)); err != nil {
		task.hmmLogger.Err(err).Msg("Got error while trying to save results")
		return err
	}
	return nil
}

func (worker *Worker) shouldPerformTask(task *Task) (bool, error) {
	taskInfo := task.decodeTask.TaskStatuses.Viterbi
	taskLogger := task.hmmLogger

	if taskInfo.Status.Complete() {
		taskLogger.Info().Msg("Task is already done. (might indicate issue acking message with RMQ). Sending back to Sequencer.")
		return false, nil
	}
	if task.decodeTask.UserCanceled {
		taskLogger.Info().Msg("Decode was canceled, no need to perform this task. Sending back to Sequencer.")
		err := worker.redis.onTaskCancelled(task)
		return false, err
	}
	if taskInfo.Attempts >= worker.config.TaskMaxRetries {
		taskLogger.Info().Msg("Viterbi task has exceeded retries. Sending back to Sequencer.")
		err := worker.redis.onTaskExceededRetries(task, worker.config.TaskMaxRetries)
		return false, err
	}
	return true, nil
}
