package service

import (
	"errors"
	"fmt"
)

const (
	CodeTimestamp        = -1021
	CodeInvalidSignature = -1022
)

var codeMessages = map[int]string{
	-1021: "timestamp outside recvWindow, clock out of sync",
	-1022: "invalid signature",
	-2015: "invalid API key, IP or permissions",
	-2014: "API key format invalid",
	-1102: "mandatory parameter missing or malformed",
	-1013: "invalid amount",
	-1121: "invalid symbol",
	-2010: "new order rejected",
	-2011: "cancel rejected",
	-2019: "margin is insufficient",
	-4003: "quantity less than or equal to zero",
}

// APIError ответ биржи с не-2xx статусом.
type APIError struct {
	Code       int
	Msg        string
	HTTPStatus int
}

func (e *APIError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("binance http %d: %s", e.HTTPStatus, e.Msg)
	}
	return fmt.Sprintf("binance code=%d: %s", e.Code, e.Msg)
}

// Friendly человекочитаемое описание для уведомления.
func (e *APIError) Friendly() string {
	if m, ok := codeMessages[e.Code]; ok {
		return fmt.Sprintf("%s (%d: %s)", m, e.Code, e.Msg)
	}
	return e.Error()
}

func (e *APIError) Timestamp() bool {
	return e.Code == CodeTimestamp || e.Code == CodeInvalidSignature
}

// NetworkError соединение/таймаут, ответа нет.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("%s: network: %v", e.Op, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

type Kind int

const (
	KindUnknown Kind = iota
	KindTransient
	KindRejected
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRejected:
		return "rejected"
	case KindNetwork:
		return "network"
	}
	return "unknown"
}

func Classify(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Timestamp() {
			return KindTransient
		}
		return KindRejected
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return KindNetwork
	}
	return KindUnknown
}

// Reason текст причины для пользователя.
func Reason(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Friendly()
	}
	return err.Error()
}
