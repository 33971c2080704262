package conversation

import "time"

// NoticeKind distinguishes request failures from advisories.
type NoticeKind int

const (
	NoticeError NoticeKind = iota
	NoticeWarning
	NoticeInfo
)

// Notice is a dismissible message shown above the input.
type Notice struct {
	ID        int
	Kind      NoticeKind
	Text      string
	ExpiresAt time.Time
}

// Notify replaces the current notice. The returned notice carries the ID the
// caller uses to dismiss it once NoticeDuration has passed.
func (s *Session) Notify(kind NoticeKind, text string) Notice {
	s.noticeID++
	n := Notice{
		ID:        s.noticeID,
		Kind:      kind,
		Text:      text,
		ExpiresAt: s.now().Add(NoticeDuration),
	}
	s.notice = &n
	return n
}

// DismissNotice hides the notice with the given id. A newer notice is left
// in place.
func (s *Session) DismissNotice(id int) bool {
	if s.notice == nil || s.notice.ID != id {
		return false
	}
	s.notice = nil
	return true
}

// Notice returns the visible notice, if any. Expired notices are treated as
// dismissed.
func (s *Session) Notice() (Notice, bool) {
	if s.notice == nil {
		return Notice{}, false
	}
	if !s.now().Before(s.notice.ExpiresAt) {
		s.notice = nil
		return Notice{}, false
	}
	return *s.notice, true
}
