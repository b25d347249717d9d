// Package locale translates user-facing messages. Korean is the default;
// English is selected through Accept-Language.
package locale

import (
	"net/http"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys are the English texts.
const (
	MsgWindowClosed     = "Reservations are not open right now."
	MsgOutOfRange       = "This time slot is outside this week's reservable range."
	MsgMissingFields    = "Please enter both a name and a passphrase."
	MsgSlotTaken        = "Someone else just reserved this slot."
	MsgQuotaExceeded    = "Weekday 09:00, 12:00 and 15:00 slots are limited per person each week."
	MsgWrongPassphrase  = "The passphrase does not match."
	MsgSlotEmpty        = "There is no reservation in this slot."
	MsgCreateFailed     = "Saving the reservation failed."
	MsgCancelFailed     = "Cancelling the reservation failed."
	MsgStaleSnapshot    = "Reservations changed in the meantime. Please try again."
	MsgEmptyExport      = "There are no reservations this week."
	MsgWrongSecret      = "The admin password is incorrect."
	MsgAdminDisabled    = "Admin access is not configured."
	MsgUnknownTime      = "This time is not one of the available slots."
	MsgInvalidDate      = "The date must be formatted as YYYY-MM-DD."
	MsgInvalidMonth     = "The month must be formatted as YYYY-MM."
	MsgTooManyRequests  = "Too many requests. Please wait a moment."
	MsgValidationFailed = "The request is invalid."
)

var (
	Default   = language.Korean
	Supported = []language.Tag{language.Korean, language.English}

	matcher = language.NewMatcher(Supported)
	known   = map[string]struct{}{}
)

var korean = map[string]string{
	MsgWindowClosed:     "현재 예약 기간이 아닙니다.",
	MsgOutOfRange:       "해당 시간대는 이번 주 예약 범위가 아닙니다.",
	MsgMissingFields:    "이름과 비밀번호를 모두 입력해주세요.",
	MsgSlotTaken:        "방금 다른 분이 이 자리를 예약하셨어요.",
	MsgQuotaExceeded:    "평일(월~금) 09시, 12시, 15시 타임은 주당 최대 3개까지만 예약 가능합니다.",
	MsgWrongPassphrase:  "비밀번호가 일치하지 않습니다.",
	MsgSlotEmpty:        "해당 시간에 예약이 없습니다.",
	MsgCreateFailed:     "예약 저장 중 오류가 발생했습니다.",
	MsgCancelFailed:     "취소 중 오류가 발생했습니다.",
	MsgStaleSnapshot:    "그 사이 예약 현황이 변경되었습니다. 다시 시도해주세요.",
	MsgEmptyExport:      "이번 주 예약 내역이 없습니다.",
	MsgWrongSecret:      "비밀번호가 올바르지 않습니다.",
	MsgAdminDisabled:    "관리자 기능이 설정되지 않았습니다.",
	MsgUnknownTime:      "예약 가능한 시간이 아닙니다.",
	MsgInvalidDate:      "날짜는 YYYY-MM-DD 형식이어야 합니다.",
	MsgInvalidMonth:     "월은 YYYY-MM 형식이어야 합니다.",
	MsgTooManyRequests:  "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
	MsgValidationFailed: "요청이 올바르지 않습니다.",
}

func init() {
	for key, text := range korean {
		known[key] = struct{}{}
		if err := message.SetString(language.Korean, key, text); err != nil {
			panic(err)
		}
		if err := message.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
}

// Match picks the supported language for an Accept-Language header value.
func Match(acceptLanguage string) language.Tag {
	if acceptLanguage == "" {
		return Default
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return Default
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return Default
	}
	return Supported[index]
}

func FromRequest(r *http.Request) language.Tag {
	return Match(r.Header.Get("Accept-Language"))
}

// Translate returns the text for key in tag. Anything that is not a message
// key is returned unchanged.
func Translate(tag language.Tag, key string) string {
	if _, ok := known[key]; !ok {
		return key
	}
	return message.NewPrinter(tag).Sprintf(key)
}
