package core

// error_messages.go maps technical load errors to the message shown in
// place of the table when fetching records fails.
//
// # Error Codes Reference
//
// Load errors (LOAD001-LOAD099):
//
//	LOAD001 - Upstream status: the record source answered with a non-2xx status
//	          Patterns: "upstream returned status"
//	LOAD002 - Bad payload: the response could not be decoded
//	          Patterns: "decode"
//	LOAD003 - Unreachable: the record source refused the connection or has no address
//	          Patterns: "connection refused", "no such host"
//	LOAD004 - Timeout: the fetch did not finish in time
//	          Patterns: "deadline exceeded", "timeout"
//	LOAD005 - Busy: too many sessions are loading at once
//	          Patterns: "too many concurrent fetches"
//	LOAD006 - Shutdown: the load was requested while the server was stopping
//	          Patterns: "shutting down"
//
// Database errors (DB001-DB099), only with SOURCE_KIND=postgres:
//
//	DB001 - Missing table: the configured people table does not exist
//	        Patterns: "does not exist"
//	DB002 - Query failed: the people query could not be executed
//	        Patterns: "query people"
//
// Request errors (REQ001-REQ099), raised by the web layer:
//
//	REQ001 - Bad input: a path or form value could not be parsed
//	         Patterns: "invalid request"
//
// Anything else maps to ERR000, the generic "Ошибка при загрузке данных".
// Codes are shown next to the message so users can quote them.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`          // What happened (user-friendly)
	Action  string `json:"action,omitempty"` // What to do about it
	Code    string `json:"code"`             // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is matched in order with strings.Contains on the lower-cased
// error text; the first match wins, so specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "upstream returned status",
		msg: UserMessage{
			Message: "Сервер данных вернул ошибку",
			Action:  "Обновите страницу позже",
			Code:    "LOAD001",
		},
	},
	{
		pattern: "too many concurrent fetches",
		msg: UserMessage{
			Message: "Сервис перегружен",
			Action:  "Подождите немного и обновите страницу",
			Code:    "LOAD005",
		},
	},
	{
		pattern: "shutting down",
		msg: UserMessage{
			Message: "Сервер перезапускается",
			Action:  "Обновите страницу через минуту",
			Code:    "LOAD006",
		},
	},
	{
		pattern: "decode",
		msg: UserMessage{
			Message: "Получены некорректные данные",
			Action:  "Обновите страницу или сообщите в поддержку",
			Code:    "LOAD002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Источник данных недоступен",
			Action:  "Проверьте подключение и обновите страницу",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Источник данных недоступен",
			Action:  "Проверьте подключение и обновите страницу",
			Code:    "LOAD003",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Истекло время ожидания данных",
			Action:  "Обновите страницу позже",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Истекло время ожидания данных",
			Action:  "Обновите страницу позже",
			Code:    "LOAD004",
		},
	},
	{
		pattern: "does not exist",
		msg: UserMessage{
			Message: "Таблица с данными не найдена",
			Action:  "Проверьте настройку SOURCE_TABLE",
			Code:    "DB001",
		},
	},
	{
		pattern: "query people",
		msg: UserMessage{
			Message: "Не удалось прочитать данные из базы",
			Action:  "Обновите страницу позже",
			Code:    "DB002",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "Некорректный запрос",
			Action:  "Обновите страницу и повторите действие",
			Code:    "REQ001",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Ошибка при загрузке данных",
	Action:  "Обновите страницу",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// A nil error yields the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

// FormatUserError formats err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a specific pattern rather than
// the generic fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
