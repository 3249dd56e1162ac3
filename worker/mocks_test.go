package worker

import (
	"errors"

	"github.com/rs/zerolog"
	"github.com/streadway/amqp"

	"seqmark.io/hmm/decode"
	"seqmark.io/hmm/tasks"
)

type failingMethod struct {
	fail bool
}

type withValue struct {
	fail          bool
	returnedValue interface{}
}

type redisMock struct {
	config redisMockConfig
	calls  redisMockCalls
}

type redisMockConfig struct {
	getDecodeTask         withValue
	getCachedResult       withValue
	cacheResult           failingMethod
	onTaskCancelled       failingMethod
	onTaskStarted         failingMethod
	onTaskExceededRetries failingMethod
	onTaskFailedWithError failingMethod
	onTaskComplete        failingMethod
}

type redisMockCalls struct {
	getDecodeTask         bool
	getCachedResult       bool
	cacheResult           bool
	onTaskCancelled       bool
	onTaskStarted         bool
	onTaskExceededRetries bool
	onTaskFailedWithError bool
	onTaskComplete        bool
}

type rmqMock struct {
	config rmqMockConfig
	calls  rmqMockCalls
}

type rmqMockConfig struct {
	pingSequencer       failingMethod
	acknowledgeDelivery failingMethod
}

type rmqMockCalls struct {
	pingSequencer       bool
	acknowledgeDelivery bool
	rejectDelivery      bool
}

type s3Mock struct {
	config s3MockConfig
	calls  s3MockCalls
}

type s3MockConfig struct {
	getObservationData withValue
	saveResultsFile    failingMethod
}

type s3MockCalls struct {
	getObservationData bool
	saveResultsFile    bool
}

func (mock *s3Mock) close() {}

func (mock *rmqMock) close() {}

func (mock *redisMock) close() {}

func (mock *redisMock) getDecodeTask(redisKey string) (*tasks.DecodeTask, error) {
	mock.calls.getDecodeTask = true
	if mock.config.getDecodeTask.fail {
		return nil, errors.New("failed to get decode task")
	}
	switch mock.config.getDecodeTask.returnedValue.(type) {
	case tasks.DecodeTask:
		task := mock.config.getDecodeTask.returnedValue.(tasks.DecodeTask)
		return &task, nil
	default:
		return &tasks.DecodeTask{ModelName: testModelName}, nil
	}
}

func (mock *redisMock) getCachedResult(cacheKey string) (*decode.Path, error) {
	mock.calls.getCachedResult = true
	if mock.config.getCachedResult.fail {
		return nil, errors.New("failed to query result cache")
	}
	switch mock.config.getCachedResult.returnedValue.(type) {
	case decode.Path:
		path := mock.config.getCachedResult.returnedValue.(decode.Path)
		return &path, nil
	default:
		return nil, nil
	}
}

func (mock *redisMock) cacheResult(cacheKey string, path decode.Path) error {
	mock.calls.cacheResult = true
	if mock.config.cacheResult.fail {
		return errors.New("failed to store result in cache")
	}
	return nil
}

func (mock *redisMock) onTaskStarted(task *Task) error {
	mock.calls.onTaskStarted = true
	if mock.config.onTaskStarted.fail {
		return errors.New("failed to update decode task on start")
	}
	return nil
}

func (mock *redisMock) onTaskCancelled(task *Task, errorMessages ...string) error {
	mock.calls.onTaskCancelled = true
	if mock.config.onTaskCancelled.fail {
		return errors.New("failed to update decode task on cancel")
	}
	return nil
}

func (mock *redisMock) onTaskExceededRetries(task *Task, maxRetries int) error {
	mock.calls.onTaskExceededRetries = true
	if mock.config.onTaskExceededRetries.fail {
		return errors.New("failed to update decode task on exceeded retries")
	}
	return nil
}

func (mock *redisMock) onTaskFailedWithError(task *Task, err error) error {
	mock.calls.onTaskFailedWithError = true
	if mock.config.onTaskFailedWithError.fail {
		return errors.New("failed to update decode task on fail with error")
	}
	return nil
}

func (mock *redisMock) onTaskComplete(task *Task) error {
	mock.calls.onTaskComplete = true
	if mock.config.onTaskComplete.fail {
		return errors.New("failed to update decode task on complete")
	}
	return nil
}

func (mock *rmqMock) rejectDelivery(delivery *amqp.Delivery, hmmLogger *zerolog.Logger) {
	mock.calls.rejectDelivery = true
}

func (mock *rmqMock) getDeliveriesCh() <-chan amqp.Delivery {
	return nil
}

func (mock *rmqMock) getReqChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) getRespChanErrorsCh() <-chan *amqp.Error {
	return nil
}

func (mock *rmqMock) pingSequencer(task *Task, message Message) error {
	mock.calls.pingSequencer = true
	if mock.config.pingSequencer.fail {
		return errors.New("failed to ping sequencer")
	}
	return nil
}

func (mock *rmqMock) acknowledgeDelivery(delivery *amqp.Delivery) error {
	mock.calls.acknowledgeDelivery = true
	if mock.config.acknowledgeDelivery.fail {
		return errors.New("failed to acknowledge delivery")
	}
	return nil
}

func (mock *s3Mock) getObservationData(task *Task) ([]byte, error) {
	mock.calls.getObservationData = true
	if mock.config.getObservationData.fail {
		return nil, errors.New("mock: failed to load from s3")
	}
	switch mock.config.getObservationData.returnedValue.(type) {
	case []byte:
		return mock.config.getObservationData.returnedValue.([]byte), nil
	default:
		return []byte("ACGT"), nil
	}
}

func (mock *s3Mock) saveResultsFile(task *Task, result string) error {
	mock.calls.saveResultsFile = true
	if mock.config.saveResultsFile.fail {
		return errors.New("failed to upload results")
	}
	return nil
}
