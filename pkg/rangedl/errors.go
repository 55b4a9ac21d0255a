package rangedl

import "errors"

var (
	// ErrSessionExists names the rejection of a Download whose id is
	// already live in the session table. Download reports that rejection
	// as (false, nil); it does not return this error.
	ErrSessionExists = errors.New("rangedl: session id already in use")
	// ErrDuplicateFile names the rejection of a Download whose file name
	// another live session already owns. Download reports that rejection
	// as (false, nil); it does not return this error.
	ErrDuplicateFile = errors.New("rangedl: file name already has a live download")
	// ErrSessionNotFound names a Pause/Resume/Cancel on an id that isn't
	// present in the session table. Those methods return false for it;
	// none of them returns this error.
	ErrSessionNotFound = errors.New("rangedl: session not found")
	// ErrInvalidState names a Resume on a session that isn't paused or
	// awaiting pause. Resume returns false for it; it does not return
	// this error.
	ErrInvalidState = errors.New("rangedl: session is not paused")
	// ErrEngineClosed is returned by Download once Close has been called.
	ErrEngineClosed = errors.New("rangedl: engine is closed")
	// ErrQueueClosed is returned by writeQueue.Push once Close has run.
	ErrQueueClosed = errors.New("rangedl: write queue is closed")
	// ErrBadStatus is surfaced when the transport yields a status code
	// other than 200 or 206.
	ErrBadStatus = errors.New("rangedl: unexpected HTTP status for range request")
	// ErrBadContentRange is surfaced when Content-Range can't be parsed,
	// or its numeric fields are inconsistent.
	ErrBadContentRange = errors.New("rangedl: malformed Content-Range header")
)
