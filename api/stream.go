package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartRunMsg   MsgType = "run_start"
	StartCaseMsg  MsgType = "case_start"
	FinishCaseMsg MsgType = "case_finish"
	FinishRunMsg  MsgType = "run_finish"
)

// Verdict detail size constraints for streaming
const (
	MaxDetailHeight = 40
	MaxDetailWidth  = 80
)

// Header is the common header for all streaming response messages
type Header struct {
	RunUuid string  `json:"run_uuid"`
	MsgType MsgType `json:"msg_type"`
}

// StartRun message sent when a judging run begins
type StartRun struct {
	Header
	Total       int    `json:"total"`
	StartedTime string `json:"started_time"`
}

// StartCase message sent when a test case is about to be launched
type StartCase struct {
	Header
	Name string `json:"name"`
}

// FinishCase message sent when a test case has been judged
type FinishCase struct {
	Header
	Result CaseResult `json:"result"`
}

// FinishRun message sent when the whole run completes
type FinishRun struct {
	Header
	Report RunReport `json:"report"`
}

// Helper function to create a header
func NewHeader(runUuid string, msgType MsgType) Header {
	return Header{
		RunUuid: runUuid,
		MsgType: msgType,
	}
}

// Helper functions to create specific streaming message types
func NewStartRun(runUuid string, total int) StartRun {
	return StartRun{
		Header:      NewHeader(runUuid, StartRunMsg),
		Total:       total,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewStartCase(runUuid string, name string) StartCase {
	return StartCase{
		Header: NewHeader(runUuid, StartCaseMsg),
		Name:   name,
	}
}

func NewFinishCase(runUuid string, result CaseResult) FinishCase {
	return FinishCase{
		Header: NewHeader(runUuid, FinishCaseMsg),
		Result: result,
	}
}

func NewFinishRun(runUuid string, report RunReport) FinishRun {
	return FinishRun{
		Header: NewHeader(runUuid, FinishRunMsg),
		Report: report,
	}
}
