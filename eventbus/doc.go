// Package eventbus provides the in-process pub/sub channel connecting the
// workflow engine to host application code.
//
// A Bus fans published TopicEvents out to subscribers synchronously and
// keeps an append-only history for correlation queries. Subscribers register
// per event type or for all events; each subscription returns a cancel
// function. A panicking subscriber never takes down the publisher or its
// sibling subscribers.
package eventbus
