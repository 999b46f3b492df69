package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

// Student is the per-identifier row upserted on session start.
type Student struct {
	ID        string
	Language  string
	Topic     string
	UpdatedAt time.Time
}

// Session is an immutable conversation container owned by a student.
type Session struct {
	ID        string
	StudentID string
	CreatedAt time.Time
}

// Message is one append-only conversation entry.
type Message struct {
	ID        string
	SessionID string
	Position  int
	Role      string
	Content   string
	CreatedAt time.Time
}

// NewMessage is the input to AppendMessages.
type NewMessage struct {
	Role    string
	Content string
}

// ProgressFact records whether a student mastered a topic.
type ProgressFact struct {
	StudentID string
	Topic     string
	Mastered  bool
	UpdatedAt time.Time
}

func now() time.Time { return time.Now().UTC() }

func sortedKeys(f Fields) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UpsertStudent creates the student or refreshes its language and topic.
func (t *Tx) UpsertStudent(ctx context.Context, id, language, topic string) error {
	return t.Upsert(ctx, tableStudents,
		Fields{"id": id},
		Fields{"language": language, "topic": topic, "updated_at": now()},
	)
}

// GetStudent returns the student, or nil if none exists.
func (t *Tx) GetStudent(ctx context.Context, id string) (*Student, error) {
	tbl := t.b.Table(tableStudents)
	q := t.b.Select(tbl.C("id"), tbl.C("language"), tbl.C("topic"), tbl.C("updated_at")).
		From(tbl).
		Where(entsql.EQ(tbl.C("id"), id))

	rows, err := t.query(ctx, "get student", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, unavailable("get student", rows.Err())
	}
	var st Student
	if err := rows.Scan(&st.ID, &st.Language, &st.Topic, &st.UpdatedAt); err != nil {
		return nil, unavailable("scan student", err)
	}
	return &st, nil
}

// InsertSession creates a new session for an existing student and returns
// its identifier.
func (t *Tx) InsertSession(ctx context.Context, studentID string) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		StudentID: studentID,
		CreatedAt: now(),
	}
	ins := t.b.Insert(tableSessions).
		Columns("id", "student_id", "created_at").
		Values(sess.ID, sess.StudentID, sess.CreatedAt)
	if err := t.exec(ctx, "insert session", ins); err != nil {
		return nil, err
	}
	return sess, nil
}

// ErrSessionOwner is returned when a session identifier is used by a
// student other than the one that owns it.
var ErrSessionOwner = errors.New("session belongs to another student")

// GetSession returns the session, or nil if none exists.
func (t *Tx) GetSession(ctx context.Context, id string) (*Session, error) {
	tbl := t.b.Table(tableSessions)
	q := t.b.Select(tbl.C("id"), tbl.C("student_id"), tbl.C("created_at")).
		From(tbl).
		Where(entsql.EQ(tbl.C("id"), id))

	rows, err := t.query(ctx, "get session", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, unavailable("get session", rows.Err())
	}
	var s Session
	if err := rows.Scan(&s.ID, &s.StudentID, &s.CreatedAt); err != nil {
		return nil, unavailable("scan session", err)
	}
	return &s, nil
}

// EnsureSession makes sure a session row with the given id exists for
// studentID, creating it and its student when missing. A new student row
// takes language and topic; an existing one is left untouched. Identifiers
// handed out while the store was unreachable become durable this way.
// A session owned by another student yields ErrSessionOwner.
func (t *Tx) EnsureSession(ctx context.Context, id, studentID, language, topic string) error {
	sess, err := t.GetSession(ctx, id)
	if err != nil {
		return err
	}
	if sess != nil {
		if sess.StudentID != studentID {
			return fmt.Errorf("ensure session %s: %w", id, ErrSessionOwner)
		}
		return nil
	}

	ts := now()
	if err := t.InsertIfAbsent(ctx, tableStudents,
		Fields{"id": studentID},
		Fields{"language": language, "topic": topic, "updated_at": ts},
	); err != nil {
		return err
	}
	return t.InsertIfAbsent(ctx, tableSessions,
		Fields{"id": id},
		Fields{"student_id": studentID, "created_at": ts},
	)
}

// LatestSession returns the most recently created session for the
// student, or nil if the student has none.
func (t *Tx) LatestSession(ctx context.Context, studentID string) (*Session, error) {
	tbl := t.b.Table(tableSessions)
	q := t.b.Select(tbl.C("id"), tbl.C("student_id"), tbl.C("created_at")).
		From(tbl).
		Where(entsql.EQ(tbl.C("student_id"), studentID)).
		OrderBy(entsql.Desc(tbl.C("created_at"))).
		Limit(1)

	rows, err := t.query(ctx, "latest session", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, unavailable("latest session", rows.Err())
	}
	var s Session
	if err := rows.Scan(&s.ID, &s.StudentID, &s.CreatedAt); err != nil {
		return nil, unavailable("scan session", err)
	}
	return &s, nil
}

// SessionCount returns how many sessions the student has started.
func (t *Tx) SessionCount(ctx context.Context, studentID string) (int, error) {
	tbl := t.b.Table(tableSessions)
	q := t.b.Select(entsql.Count("*")).
		From(tbl).
		Where(entsql.EQ(tbl.C("student_id"), studentID))

	rows, err := t.query(ctx, "count sessions", q)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, unavailable("scan session count", err)
		}
	}
	return n, unavailable("count sessions", rows.Err())
}

// AppendMessages appends msgs to the session in order, continuing after
// the highest stored position.
func (t *Tx) AppendMessages(ctx context.Context, sessionID string, msgs []NewMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	tbl := t.b.Table(tableMessages)
	q := t.b.Select(entsql.Max(tbl.C("position"))).
		From(tbl).
		Where(entsql.EQ(tbl.C("session_id"), sessionID))

	rows, err := t.query(ctx, "max position", q)
	if err != nil {
		return err
	}
	var last sql.NullInt64
	if rows.Next() {
		if err := rows.Scan(&last); err != nil {
			rows.Close()
			return unavailable("scan max position", err)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return unavailable("max position", err)
	}

	next := 0
	if last.Valid {
		next = int(last.Int64) + 1
	}

	ts := now()
	ins := t.b.Insert(tableMessages).
		Columns("id", "session_id", "position", "role", "content", "created_at")
	for i, m := range msgs {
		ins.Values(uuid.NewString(), sessionID, next+i, m.Role, m.Content, ts)
	}
	return t.exec(ctx, "append messages", ins)
}

// Messages returns the session's messages ordered by position.
func (t *Tx) Messages(ctx context.Context, sessionID string) ([]Message, error) {
	tbl := t.b.Table(tableMessages)
	q := t.b.Select(
		tbl.C("id"), tbl.C("session_id"), tbl.C("position"),
		tbl.C("role"), tbl.C("content"), tbl.C("created_at"),
	).
		From(tbl).
		Where(entsql.EQ(tbl.C("session_id"), sessionID)).
		OrderBy(tbl.C("position"))

	rows, err := t.query(ctx, "list messages", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	msgs := []Message{}
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Position, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, unavailable("scan message", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, unavailable("list messages", rows.Err())
}

// PromoteTopic marks topic as mastered for the student. A missing student
// row is created with topic as its current topic so the foreign key holds.
// Mastery is never written as false.
func (t *Tx) PromoteTopic(ctx context.Context, studentID, topic string) error {
	err := t.InsertIfAbsent(ctx, tableStudents,
		Fields{"id": studentID},
		Fields{"language": "", "topic": topic, "updated_at": now()},
	)
	if err != nil {
		return err
	}
	return t.Upsert(ctx, tableProgress,
		Fields{"student_id": studentID, "topic": topic},
		Fields{"mastered": true, "updated_at": now()},
	)
}

// ProgressFacts returns every progress row for the student ordered by topic.
func (t *Tx) ProgressFacts(ctx context.Context, studentID string) ([]ProgressFact, error) {
	tbl := t.b.Table(tableProgress)
	q := t.b.Select(tbl.C("student_id"), tbl.C("topic"), tbl.C("mastered"), tbl.C("updated_at")).
		From(tbl).
		Where(entsql.EQ(tbl.C("student_id"), studentID)).
		OrderBy(tbl.C("topic"))

	rows, err := t.query(ctx, "list progress", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	facts := []ProgressFact{}
	for rows.Next() {
		var f ProgressFact
		if err := rows.Scan(&f.StudentID, &f.Topic, &f.Mastered, &f.UpdatedAt); err != nil {
			return nil, unavailable("scan progress", err)
		}
		facts = append(facts, f)
	}
	return facts, unavailable("list progress", rows.Err())
}

// MasteredTopics returns the topics the student has mastered, ordered by
// topic name.
func (t *Tx) MasteredTopics(ctx context.Context, studentID string) ([]string, error) {
	tbl := t.b.Table(tableProgress)
	q := t.b.Select(tbl.C("topic")).
		From(tbl).
		Where(entsql.And(
			entsql.EQ(tbl.C("student_id"), studentID),
			entsql.EQ(tbl.C("mastered"), true),
		)).
		OrderBy(tbl.C("topic"))

	rows, err := t.query(ctx, "mastered topics", q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	topics := []string{}
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, unavailable("scan topic", err)
		}
		topics = append(topics, topic)
	}
	return topics, unavailable("mastered topics", rows.Err())
}

// RegisterStudentCode records an enrolment code. It reports whether the
// code was already registered before this call.
func (t *Tx) RegisterStudentCode(ctx context.Context, code string) (existed bool, err error) {
	tbl := t.b.Table(tableStudentCodes)
	q := t.b.Select(tbl.C("code")).
		From(tbl).
		Where(entsql.EQ(tbl.C("code"), code))

	rows, err := t.query(ctx, "find student code", q)
	if err != nil {
		return false, err
	}
	existed = rows.Next()
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, unavailable("find student code", err)
	}
	if existed {
		return true, nil
	}

	ins := t.b.Insert(tableStudentCodes).
		Columns("code", "created_at").
		Values(code, now())
	return false, t.exec(ctx, "insert student code", ins)
}
