package events

import "github.com/atomicstack/camview/internal/logging"

type NoticeTracer struct{}

var Notice = NoticeTracer{}

func (NoticeTracer) Push(text string, dropped int) {
	logging.Trace("notice.push", map[string]interface{}{"text": text, "dropped": dropped})
}

func (NoticeTracer) Dismiss(text string, removed int) {
	logging.Trace("notice.dismiss", map[string]interface{}{"text": text, "removed": removed})
}

func (NoticeTracer) Expire(text string, removed int) {
	logging.Trace("notice.expire", map[string]interface{}{"text": text, "removed": removed})
}
