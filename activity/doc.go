// Package activity contains first-class activity implementations and
// supporting utilities for building topics in TopicFlow. The package covers
// the closed set of behavioral roles the engine knows about:
//
//  1. Base lifecycle plumbing (BaseActivity)
//  2. Plain function adapters (FuncActivity)
//  3. External event emission with optional blocking (EventTriggerActivity)
//  4. Sub-topic call/return (SubTopicTrigger, CompletionActivity)
//  5. Open-ended repetition (RepeatController)
//
// Design principles:
//   - No hidden global state; all wiring flows through *core.RunContext
//   - Embed BaseActivity; only implement Run plus HandleResponse when the
//     activity accepts external input
//   - Construction-time validation: invalid configurations fail at
//     constructor calls, never at run time
package activity
