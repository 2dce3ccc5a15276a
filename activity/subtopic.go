package activity

import (
	"fmt"

	"github.com/hupe1980/topicflow/core"
)

// SubTopicOptions configures a SubTopicTrigger.
type SubTopicOptions struct {
	// Wait holds the calling topic suspended and resumes it when the
	// sub-topic completes. When false, control is handed off permanently
	// and the caller is not resumed.
	Wait bool

	// ResumeData is staged on the call-stack frame and handed back to the
	// caller on resumption. Only meaningful with Wait.
	ResumeData any

	// Message overrides the message surfaced with the run result.
	Message string
}

// WithWait enables hold-and-resume semantics with the given resume data.
func WithWait(resumeData any) func(*SubTopicOptions) {
	return func(o *SubTopicOptions) {
		o.Wait = true
		o.ResumeData = resumeData
	}
}

// SubTopicTrigger hands control to a named sub-topic, either permanently
// (hand-off) or with guaranteed resumption (hold-and-resume). In wait mode
// the engine pushes a call-stack frame before switching; in hand-off mode
// the trigger writes NextTopic and ends the calling topic.
type SubTopicTrigger struct {
	BaseActivity
	subTopicName string
	opts         SubTopicOptions
}

// NewSubTopicTrigger validates the sub-topic name and constructs the trigger.
func NewSubTopicTrigger(subTopicName string, optFns ...func(o *SubTopicOptions)) (*SubTopicTrigger, error) {
	if subTopicName == "" {
		return nil, fmt.Errorf("sub-topic trigger: sub-topic name must not be empty")
	}
	opts := SubTopicOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SubTopicTrigger{
		BaseActivity: NewBaseActivity(fmt.Sprintf("trigger(%s)", subTopicName)),
		subTopicName: subTopicName,
		opts:         opts,
	}, nil
}

// SubTopicName returns the target sub-topic.
func (a *SubTopicTrigger) SubTopicName() string { return a.subTopicName }

// Run requests the control transfer.
func (a *SubTopicTrigger) Run(rc *core.RunContext, _ any) (core.ActivityResult, error) {
	msg := a.opts.Message
	if msg == "" {
		msg = fmt.Sprintf("switching to topic %q", a.subTopicName)
	}

	if a.opts.Wait {
		rc.LogDebug("triggering sub-topic with resume", "sub_topic", a.subTopicName)
		return core.WaitForSubTopic(a.subTopicName, a.opts.ResumeData, msg), nil
	}

	// Permanent hand-off: the engine switches on NextTopic after this topic
	// finishes; the caller is abandoned, not resumed.
	rc.Set(core.KeyNextTopic, a.subTopicName)
	rc.LogDebug("handing off to sub-topic", "sub_topic", a.subTopicName)
	return core.End(msg), nil
}

// CompletionOptions configures a CompletionActivity.
type CompletionOptions struct {
	// Message overrides the terminal message.
	Message string

	// CompletionData computes the data handed back to a waiting caller.
	// Nil means no completion payload.
	CompletionData func(rc *core.RunContext) any
}

// WithCompletionData supplies the completion payload producer.
func WithCompletionData(fn func(rc *core.RunContext) any) func(*CompletionOptions) {
	return func(o *CompletionOptions) { o.CompletionData = fn }
}

// WithCompletionMessage overrides the terminal message.
func WithCompletionMessage(msg string) func(*CompletionOptions) {
	return func(o *CompletionOptions) { o.Message = msg }
}

// CompletionActivity sits at the tail of a sub-topic's queue and closes the
// call/return loop: if a call-stack frame names this topic, it pops the
// frame, stages NextTopic / ResumeData / SubTopicCompletionData in the
// context and ends with a resume instruction; otherwise it ends normally.
type CompletionActivity struct {
	BaseActivity
	opts CompletionOptions
}

// NewCompletionActivity constructs a completion activity.
func NewCompletionActivity(optFns ...func(o *CompletionOptions)) *CompletionActivity {
	opts := CompletionOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &CompletionActivity{BaseActivity: NewBaseActivity("completion"), opts: opts}
}

// Run pops the matching frame (by the running topic's own name) when one is
// waiting and stages the resume instruction.
func (a *CompletionActivity) Run(rc *core.RunContext, _ any) (core.ActivityResult, error) {
	msg := a.opts.Message
	if msg == "" {
		msg = fmt.Sprintf("topic %q completed", rc.TopicName)
	}

	if rc.Stack == nil {
		return core.End(msg), nil
	}

	frame, ok := rc.Stack.Pop(rc.ConversationID, rc.TopicName)
	if !ok {
		rc.LogDebug("no caller waiting, ending normally", "topic", rc.TopicName)
		return core.End(msg), nil
	}

	if a.opts.CompletionData != nil {
		frame.CompletionData = a.opts.CompletionData(rc)
	}

	rc.Set(core.KeyNextTopic, frame.CallingTopicName)
	rc.Set(core.KeyResumeData, frame.ResumeData)
	rc.Set(core.KeySubTopicCompletionData, frame.CompletionData)

	rc.LogDebug("resuming caller", "caller", frame.CallingTopicName, "sub_topic", rc.TopicName)
	return core.EndWithData(msg, frame.CompletionData), nil
}
