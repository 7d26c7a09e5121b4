package msgbus

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"percviz/common"
)

type BusMessage struct {
	MsgType common.LocalMsgType
	RunID   string
	Msg     interface{}
}

type Subscriber interface {
	HandleMsgFromMsgBus(msg *BusMessage) error
}

// MessageBus routes messages to the subscribers of their first-class type.
// Publish delivers synchronously on the caller's goroutine, in registration
// order, so observers see epochs in the order they were trained.
type MessageBus interface {
	Register(topic common.LocalMsgType, sub Subscriber)
	UnRegister(topic common.LocalMsgType, sub Subscriber)
	Publish(runID string, t common.LocalMsgType, payload interface{}) error
	Reset()
}

type Topic interface {
	Register(sub Subscriber)
	UnRegister(sub Subscriber)
	Publish(msg *BusMessage) error
}

type topicImpl struct {
	subs  atomic.Value // []Subscriber
	mutex sync.Mutex
}

func newTopic() Topic {
	t := &topicImpl{}
	t.subs.Store([]Subscriber{})
	return t
}

func (t *topicImpl) Register(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for _, s := range subs {
		if s == sub {
			return
		}
	}
	newSubs := make([]Subscriber, len(subs), len(subs)+1)
	copy(newSubs, subs)
	t.subs.Store(append(newSubs, sub))
}

func (t *topicImpl) UnRegister(sub Subscriber) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	subs := t.subs.Load().([]Subscriber)
	for i, s := range subs {
		if s == sub {
			newSubs := make([]Subscriber, 0, len(subs)-1)
			newSubs = append(newSubs, subs[:i]...)
			newSubs = append(newSubs, subs[i+1:]...)
			t.subs.Store(newSubs)
			return
		}
	}
}

// Publish hands msg to every subscriber even if some of them fail, and
// reports the first failure.
func (t *topicImpl) Publish(msg *BusMessage) error {
	var first error
	for _, sub := range t.subs.Load().([]Subscriber) {
		if err := sub.HandleMsgFromMsgBus(msg); err != nil && first == nil {
			first = errors.WithMessagef(err, "msgbus: subscriber of type %d", msg.MsgType)
		}
	}
	return first
}

type messageBusImpl struct {
	topics sync.Map // first-class LocalMsgType -> Topic
}

func NewMessageBus() MessageBus {
	return &messageBusImpl{}
}

func (mb *messageBusImpl) Register(topic common.LocalMsgType, sub Subscriber) {
	v, _ := mb.topics.LoadOrStore(topic.Type(), newTopic())
	v.(Topic).Register(sub)
}

func (mb *messageBusImpl) UnRegister(topic common.LocalMsgType, sub Subscriber) {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		return
	}
	v.(Topic).UnRegister(sub)
}

// Publish is a no-op for topics nobody registered for.
func (mb *messageBusImpl) Publish(runID string, topic common.LocalMsgType, msg interface{}) error {
	v, ok := mb.topics.Load(topic.Type())
	if !ok {
		return nil
	}
	return v.(Topic).Publish(&BusMessage{MsgType: topic, RunID: runID, Msg: msg})
}

func (mb *messageBusImpl) Reset() {
	mb.topics.Range(func(k, _ interface{}) bool {
		mb.topics.Delete(k)
		return true
	})
}
