// Package recorder writes trail records asynchronously.
//
// A Recorder never blocks a decision on storage: records go into a bounded
// queue and a single worker writes them in order. When the queue is full the
// record is dropped and counted. Close drains the queue, which matters for
// hook processes that exit right after their decision.
//
// Session resets travel through the same queue, so a reset never races ahead
// of records queued before it.
package recorder
