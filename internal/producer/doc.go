// Package producer sequences one episode production session from transcript
// to publish: intent detection, the retake and command pipelines, the
// submission guard chain, job polling, and automatic publication.
package producer
