package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/imptech/academy-ledger/internal/domain/payment"
	"github.com/imptech/academy-ledger/internal/domain/shared"
	"github.com/imptech/academy-ledger/internal/domain/student"
	"github.com/imptech/academy-ledger/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY FAKES
// Tests run single-threaded against an in-memory Store with the same error
// contract as the postgres implementation.
// ══════════════════════════════════════════════════════════════════════════════

type fakeStore struct {
	students map[student.RegNumber]*student.Student
	payments []*payment.Payment
	nextID   int64

	// One-shot hooks simulating a concurrent writer sneaking in between
	// candidate computation and insert.
	onRegister func(s *fakeStore)
	onRecord   func(s *fakeStore)

	// Force every write to collide, for retry-exhaustion tests.
	failRegister bool
	failRecord   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{students: make(map[student.RegNumber]*student.Student)}
}

func (s *fakeStore) Students() student.Repository { return &fakeStudents{s} }
func (s *fakeStore) Payments() payment.Repository { return &fakePayments{s} }

func (s *fakeStore) RegisterStudent(ctx context.Context, st *student.Student, initial *payment.Payment) error {
	if hook := s.onRegister; hook != nil {
		s.onRegister = nil
		hook(s)
	}
	if s.failRegister {
		return shared.ErrDuplicateRegistration
	}
	if _, exists := s.students[st.RegNumber]; exists {
		return shared.ErrDuplicateRegistration
	}
	if initial != nil {
		if err := s.insertPayment(initial); err != nil {
			return err
		}
	}
	s.students[st.RegNumber] = st
	return nil
}

func (s *fakeStore) RecordPayment(ctx context.Context, p *payment.Payment) (decimal.Decimal, error) {
	if hook := s.onRecord; hook != nil {
		s.onRecord = nil
		hook(s)
	}
	if s.failRecord {
		return decimal.Zero, shared.ErrDuplicateReceipt
	}
	if _, exists := s.students[p.RegNumber]; !exists {
		return decimal.Zero, shared.ErrStudentNotFound
	}

	prior := s.totalPaid(p.RegNumber)
	if err := s.insertPayment(p); err != nil {
		return decimal.Zero, err
	}
	return prior, nil
}

func (s *fakeStore) DeleteStudent(ctx context.Context, reg student.RegNumber) (int, error) {
	if _, exists := s.students[reg]; !exists {
		return 0, shared.ErrStudentNotFound
	}
	delete(s.students, reg)

	kept := s.payments[:0]
	removed := 0
	for _, p := range s.payments {
		if p.RegNumber == reg {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.payments = kept
	return removed, nil
}

func (s *fakeStore) StudentTotals(ctx context.Context, f student.Filters) ([]*student.Student, map[student.RegNumber]decimal.Decimal, error) {
	students, err := (&fakeStudents{s}).List(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	totals := make(map[student.RegNumber]decimal.Decimal, len(students))
	for _, st := range students {
		totals[st.RegNumber] = s.totalPaid(st.RegNumber)
	}
	return students, totals, nil
}

func (s *fakeStore) insertPayment(p *payment.Payment) error {
	for _, existing := range s.payments {
		if existing.ReceiptNumber == p.ReceiptNumber {
			return shared.ErrDuplicateReceipt
		}
	}
	s.nextID++
	p.PaymentID = s.nextID
	cp := *p
	s.payments = append(s.payments, &cp)
	return nil
}

func (s *fakeStore) totalPaid(reg student.RegNumber) decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.payments {
		if p.RegNumber == reg {
			total = total.Add(p.Amount)
		}
	}
	return total
}

type fakeStudents struct{ s *fakeStore }

func (r *fakeStudents) Create(ctx context.Context, st *student.Student) error {
	if _, exists := r.s.students[st.RegNumber]; exists {
		return shared.ErrDuplicateRegistration
	}
	r.s.students[st.RegNumber] = st
	return nil
}

func (r *fakeStudents) GetByRegNumber(ctx context.Context, reg student.RegNumber) (*student.Student, error) {
	st, ok := r.s.students[reg]
	if !ok {
		return nil, shared.ErrStudentNotFound
	}
	cp := *st
	return &cp, nil
}

func (r *fakeStudents) List(ctx context.Context, f student.Filters) ([]*student.Student, error) {
	out := make([]*student.Student, 0, len(r.s.students))
	for _, st := range r.s.students {
		if f.Status != "" && st.Status != f.Status {
			continue
		}
		if f.Programme != "" && st.Programme != f.Programme {
			continue
		}
		cp := *st
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationDate.After(out[j].RegistrationDate)
	})
	return out, nil
}

func (r *fakeStudents) Count(ctx context.Context, f student.Filters) (int, error) {
	list, _ := r.List(ctx, f)
	return len(list), nil
}

func (r *fakeStudents) UpdateFields(ctx context.Context, reg student.RegNumber, updates student.Updates) error {
	st, ok := r.s.students[reg]
	if !ok {
		return shared.ErrStudentNotFound
	}
	for field, value := range updates {
		if !student.MutableFields[field] {
			return shared.ErrUnknownField
		}
		switch field {
		case student.FieldName:
			st.Name = value.(string)
		case student.FieldAge:
			st.Age = value.(int)
		case student.FieldGender:
			st.Gender = value.(string)
		case student.FieldProgramme:
			st.Programme = value.(string)
		case student.FieldStartDate:
			st.StartDate = value.(string)
		case student.FieldDuration:
			st.Duration = value.(string)
		case student.FieldSchedule:
			st.Schedule = value.(string)
		case student.FieldProgrammeFee:
			st.ProgrammeFee = value.(decimal.Decimal)
		case student.FieldStatus:
			st.Status = student.Status(value.(string))
		case student.FieldScholarship:
			st.Scholarship = value.(bool)
		}
	}
	return nil
}

func (r *fakeStudents) MaxRegNumber(ctx context.Context, prefix string) (student.RegNumber, error) {
	var max student.RegNumber
	maxSerial := 0
	for reg := range r.s.students {
		if !strings.HasPrefix(string(reg), prefix) {
			continue
		}
		parsed, err := student.ParseRegNumber(string(reg))
		if err != nil {
			return "", err
		}
		if parsed.Serial > maxSerial {
			maxSerial = parsed.Serial
			max = reg
		}
	}
	return max, nil
}

func (r *fakeStudents) Exists(ctx context.Context, reg student.RegNumber) (bool, error) {
	_, ok := r.s.students[reg]
	return ok, nil
}

type fakePayments struct{ s *fakeStore }

func (r *fakePayments) Insert(ctx context.Context, p *payment.Payment) error {
	if _, exists := r.s.students[p.RegNumber]; !exists {
		return shared.ErrStudentNotFound
	}
	return r.s.insertPayment(p)
}

func (r *fakePayments) TotalPaid(ctx context.Context, reg student.RegNumber) (decimal.Decimal, error) {
	return r.s.totalPaid(reg), nil
}

func (r *fakePayments) History(ctx context.Context, reg student.RegNumber) ([]payment.HistoryEntry, error) {
	st, ok := r.s.students[reg]
	if !ok {
		return nil, nil
	}

	var entries []payment.HistoryEntry
	for _, p := range r.s.payments {
		if p.RegNumber != reg {
			continue
		}
		paidThrough := decimal.Zero
		for _, q := range r.s.payments {
			if q.RegNumber == reg && !q.PaymentDate.After(p.PaymentDate) {
				paidThrough = paidThrough.Add(q.Amount)
			}
		}
		entries = append(entries, payment.HistoryEntry{
			PaymentID:      p.PaymentID,
			Amount:         p.Amount,
			PaymentDate:    p.PaymentDate,
			ReceiptNumber:  p.ReceiptNumber,
			Note:           p.Note,
			RunningBalance: st.ProgrammeFee.Sub(paidThrough),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].PaymentDate.Equal(entries[j].PaymentDate) {
			return entries[i].PaymentDate.After(entries[j].PaymentDate)
		}
		return entries[i].PaymentID > entries[j].PaymentID
	})
	return entries, nil
}

func (r *fakePayments) List(ctx context.Context, f payment.ListFilters) ([]payment.LedgerEntry, error) {
	var out []payment.LedgerEntry
	for _, p := range r.s.payments {
		st := r.s.students[p.RegNumber]
		if st == nil {
			continue
		}
		out = append(out, payment.LedgerEntry{
			PaymentID:     p.PaymentID,
			PaymentDate:   p.PaymentDate,
			StudentName:   st.Name,
			RegNumber:     p.RegNumber,
			Programme:     st.Programme,
			Amount:        p.Amount,
			ReceiptNumber: p.ReceiptNumber,
		})
	}
	return out, nil
}

func (r *fakePayments) LookupReceipt(ctx context.Context, rcpt payment.ReceiptNumber) (*payment.ReceiptLookup, error) {
	for _, p := range r.s.payments {
		if p.ReceiptNumber == rcpt {
			st := r.s.students[p.RegNumber]
			return &payment.ReceiptLookup{
				ReceiptNumber: p.ReceiptNumber,
				PaymentDate:   p.PaymentDate,
				Amount:        p.Amount,
				RegNumber:     p.RegNumber,
				StudentName:   st.Name,
			}, nil
		}
	}
	return nil, shared.ErrPaymentNotFound
}

func (r *fakePayments) Delete(ctx context.Context, paymentID int64) error {
	for i, p := range r.s.payments {
		if p.PaymentID == paymentID {
			r.s.payments = append(r.s.payments[:i], r.s.payments[i+1:]...)
			return nil
		}
	}
	return shared.ErrPaymentNotFound
}

func (r *fakePayments) MaxReceiptNumber(ctx context.Context, dayPrefix string) (payment.ReceiptNumber, error) {
	var max payment.ReceiptNumber
	maxSerial := 0
	for _, p := range r.s.payments {
		if !strings.HasPrefix(string(p.ReceiptNumber), dayPrefix) {
			continue
		}
		parsed, err := payment.ParseReceiptNumber(string(p.ReceiptNumber))
		if err != nil {
			return "", err
		}
		if parsed.Serial > maxSerial {
			maxSerial = parsed.Serial
			max = p.ReceiptNumber
		}
	}
	return max, nil
}

// fakeEmitter records emitted documents; fail switches it to rendering errors.
type fakeEmitter struct {
	receipts []payment.ReceiptData
	letters  []payment.StudentSnapshot
	fail     bool
}

func (f *fakeEmitter) EmitReceipt(ctx context.Context, data payment.ReceiptData, snap payment.StudentSnapshot) (string, error) {
	if f.fail {
		return "", errors.New("render failed")
	}
	f.receipts = append(f.receipts, data)
	return "receipts/receipt_" + string(data.ReceiptNumber) + ".pdf", nil
}

func (f *fakeEmitter) EmitAdmissionLetter(ctx context.Context, snap payment.StudentSnapshot, startDate, duration, schedule string) (string, error) {
	if f.fail {
		return "", errors.New("render failed")
	}
	f.letters = append(f.letters, snap)
	return "letters/admission_" + string(snap.RegNumber) + ".pdf", nil
}

// capturePublisher collects published events for assertions.
type capturePublisher struct {
	events []shared.Event
}

func (c *capturePublisher) Publish(e shared.Event) { c.events = append(c.events, e) }

func (c *capturePublisher) typesSeen() []shared.EventType {
	out := make([]shared.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType())
	}
	return out
}

// fakeClock is an adjustable test clock.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

// ══════════════════════════════════════════════════════════════════════════════
// FIXTURE
// ══════════════════════════════════════════════════════════════════════════════

type fixture struct {
	svc     *LedgerService
	store   *fakeStore
	emitter *fakeEmitter
	events  *capturePublisher
	clock   *fakeClock
}

func newFixture() *fixture {
	store := newFakeStore()
	emitter := &fakeEmitter{}
	events := &capturePublisher{}
	clock := &fakeClock{t: time.Date(2025, 8, 28, 10, 0, 0, 0, timeutil.LagosTZ)}

	svc := NewLedgerService(LedgerServiceConfig{
		Store:    store,
		Receipts: emitter,
		Letters:  emitter,
		Events:   events,
		Now:      clock.Now,
	})

	return &fixture{svc: svc, store: store, emitter: emitter, events: events, clock: clock}
}

func webDevDraft(fee int64) student.Draft {
	return student.Draft{
		Name:         "Adaeze Obi",
		Age:          24,
		Gender:       "Female",
		Programme:    "Web Development",
		StartDate:    "2025-09-01",
		Duration:     "6 months",
		Schedule:     "Weekdays (Morning)",
		ProgrammeFee: decimal.NewFromInt(fee),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// REGISTRATION
// ══════════════════════════════════════════════════════════════════════════════

func TestRegisterAssignsSequentialRegNumbers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.svc.Register(ctx, webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)
	assert.Equal(t, student.RegNumber("IMPTECH-WD-2025-001"), first.Student.RegNumber)

	second, err := f.svc.Register(ctx, webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)
	assert.Equal(t, student.RegNumber("IMPTECH-WD-2025-002"), second.Student.RegNumber)

	// A different programme gets its own serial scope.
	draft := webDevDraft(90000)
	draft.Programme = "Basic Computer Training"
	third, err := f.svc.Register(ctx, draft, decimal.Zero, "")
	assert.NoError(t, err)
	assert.Equal(t, student.RegNumber("IMPTECH-BCT-2025-001"), third.Student.RegNumber)
}

func TestRegisterWithInitialPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Register(ctx, webDevDraft(150000), decimal.NewFromInt(50000), "deposit")
	assert.NoError(t, err)
	assert.NotNil(t, res.Payment)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-0001"), res.Payment.ReceiptNumber)
	assert.Equal(t, "deposit", res.Payment.Note)
	assert.NoError(t, res.DocumentErr)
	assert.NotEmpty(t, res.LetterPath)
	assert.NotEmpty(t, res.ReceiptPath)

	// The first receipt shows only the single amount.
	assert.Len(t, f.emitter.receipts, 1)
	assert.Nil(t, f.emitter.receipts[0].TotalPaid)
	assert.Nil(t, f.emitter.receipts[0].Balance)

	account, err := f.svc.GetAccount(ctx, res.Student.RegNumber)
	assert.NoError(t, err)
	assert.True(t, account.TotalPaid.Equal(decimal.NewFromInt(50000)))
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(100000)))
}

func TestRegisterWithoutInitialPayment(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Register(context.Background(), webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)
	assert.Nil(t, res.Payment)
	assert.Empty(t, res.ReceiptPath)
	assert.NotEmpty(t, res.LetterPath)
	assert.Empty(t, f.emitter.receipts)
	assert.Len(t, f.emitter.letters, 1)
}

func TestRegisterRejectsNegativeInitialPayment(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Register(context.Background(), webDevDraft(150000), decimal.NewFromInt(-1), "")
	assert.ErrorIs(t, err, shared.ErrNonPositiveAmount)
	assert.Empty(t, f.store.students)
}

func TestRegisterRejectsInvalidDraft(t *testing.T) {
	f := newFixture()

	draft := webDevDraft(150000)
	draft.Name = ""
	_, err := f.svc.Register(context.Background(), draft, decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrEmptyValue)
}

func TestRegisterRetriesOnIdentifierCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// A concurrent registration claims IMPTECH-WD-2025-001 between the
	// candidate computation and the insert.
	f.store.onRegister = func(s *fakeStore) {
		s.students["IMPTECH-WD-2025-001"] = student.NewFromDraft("IMPTECH-WD-2025-001", webDevDraft(150000), f.clock.t)
	}

	res, err := f.svc.Register(ctx, webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)
	assert.Equal(t, student.RegNumber("IMPTECH-WD-2025-002"), res.Student.RegNumber)
}

func TestRegisterSerialGrowsPastPadding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 1000 sorts before 999 as a string; the max lookup must compare the
	// parsed serial or registration stalls at the padding boundary.
	for _, reg := range []student.RegNumber{"IMPTECH-WD-2025-999", "IMPTECH-WD-2025-1000"} {
		f.store.students[reg] = student.NewFromDraft(reg, webDevDraft(150000), f.clock.t)
	}

	res, err := f.svc.Register(ctx, webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)
	assert.Equal(t, student.RegNumber("IMPTECH-WD-2025-1001"), res.Student.RegNumber)
}

func TestRegisterSurfacesPersistentCollision(t *testing.T) {
	f := newFixture()
	f.store.failRegister = true

	_, err := f.svc.Register(context.Background(), webDevDraft(150000), decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
}

// ══════════════════════════════════════════════════════════════════════════════
// PAYMENTS
// ══════════════════════════════════════════════════════════════════════════════

func registered(t *testing.T, f *fixture, fee int64) student.RegNumber {
	t.Helper()
	res, err := f.svc.Register(context.Background(), webDevDraft(fee), decimal.Zero, "")
	assert.NoError(t, err)
	return res.Student.RegNumber
}

func TestRecordPaymentDerivesTotals(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	first, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(50000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-0001"), first.Payment.ReceiptNumber)
	assert.True(t, first.TotalPaid.Equal(decimal.NewFromInt(50000)))
	assert.True(t, first.Balance.Equal(decimal.NewFromInt(100000)))

	second, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(70000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-0002"), second.Payment.ReceiptNumber)
	assert.True(t, second.TotalPaid.Equal(decimal.NewFromInt(120000)))
	assert.True(t, second.Balance.Equal(decimal.NewFromInt(30000)))

	// Regular receipts carry the derived totals.
	last := f.emitter.receipts[len(f.emitter.receipts)-1]
	assert.NotNil(t, last.TotalPaid)
	assert.True(t, last.Balance.Equal(decimal.NewFromInt(30000)))
}

func TestRecordPaymentAllowsOverpayment(t *testing.T) {
	f := newFixture()
	reg := registered(t, f, 100000)

	res, err := f.svc.RecordPayment(context.Background(), reg, decimal.NewFromInt(120000), "")
	assert.NoError(t, err)
	assert.True(t, res.Balance.Equal(decimal.NewFromInt(-20000)))
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture()
	reg := registered(t, f, 150000)

	_, err := f.svc.RecordPayment(context.Background(), reg, decimal.Zero, "")
	assert.ErrorIs(t, err, shared.ErrNonPositiveAmount)

	_, err = f.svc.RecordPayment(context.Background(), reg, decimal.NewFromInt(-500), "")
	assert.ErrorIs(t, err, shared.ErrNonPositiveAmount)
}

func TestRecordPaymentUnknownStudent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.RecordPayment(context.Background(), "IMPTECH-WD-2025-999", decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

func TestReceiptSerialResetsAcrossDays(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	day1, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-0001"), day1.Payment.ReceiptNumber)

	f.clock.t = f.clock.t.AddDate(0, 0, 1)

	day2, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250829-0001"), day2.Payment.ReceiptNumber)
}

func TestRecordPaymentRetriesOnReceiptCollision(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	// A concurrent payment takes RCP-20250828-0001 between candidate
	// computation and insert.
	f.store.onRecord = func(s *fakeStore) {
		_ = s.insertPayment(&payment.Payment{
			RegNumber:     reg,
			Amount:        decimal.NewFromInt(5000),
			PaymentDate:   f.clock.t,
			ReceiptNumber: "RCP-20250828-0001",
		})
	}

	res, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-0002"), res.Payment.ReceiptNumber)

	// The competing payment counts into the prior total.
	assert.True(t, res.TotalPaid.Equal(decimal.NewFromInt(15000)))
}

func TestReceiptSerialGrowsPastPadding(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	// Same boundary as registration numbers: "10000" sorts below "9999",
	// so the daily max must come from the parsed serial.
	for _, rcpt := range []payment.ReceiptNumber{"RCP-20250828-9999", "RCP-20250828-10000"} {
		_ = f.store.insertPayment(&payment.Payment{
			RegNumber:     reg,
			Amount:        decimal.NewFromInt(1000),
			PaymentDate:   f.clock.t,
			ReceiptNumber: rcpt,
		})
	}

	res, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.Equal(t, payment.ReceiptNumber("RCP-20250828-10001"), res.Payment.ReceiptNumber)
}

func TestRecordPaymentSurfacesPersistentCollision(t *testing.T) {
	f := newFixture()
	reg := registered(t, f, 150000)
	f.store.failRecord = true

	_, err := f.svc.RecordPayment(context.Background(), reg, decimal.NewFromInt(1000), "")
	assert.ErrorIs(t, err, shared.ErrDuplicateIdentifier)
}

func TestDocumentFailureDoesNotFailPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	f.emitter.fail = true

	res, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.True(t, shared.IsDocumentFailure(res.DocumentErr))
	assert.Empty(t, res.ReceiptPath)

	// The financial record stands.
	account, err := f.svc.GetAccount(ctx, reg)
	assert.NoError(t, err)
	assert.True(t, account.TotalPaid.Equal(decimal.NewFromInt(10000)))
}

func TestDeletePayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	res, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)

	assert.NoError(t, f.svc.DeletePayment(ctx, res.Payment.PaymentID))

	account, err := f.svc.GetAccount(ctx, reg)
	assert.NoError(t, err)
	assert.True(t, account.TotalPaid.IsZero())

	assert.ErrorIs(t, f.svc.DeletePayment(ctx, res.Payment.PaymentID), shared.ErrPaymentNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY AND DERIVED BALANCES
// ══════════════════════════════════════════════════════════════════════════════

func TestPaymentHistoryRunningBalance(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	_, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(50000), "")
	assert.NoError(t, err)
	f.clock.t = f.clock.t.AddDate(0, 0, 1)
	_, err = f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(30000), "")
	assert.NoError(t, err)

	history, err := f.svc.PaymentHistory(ctx, reg)
	assert.NoError(t, err)
	assert.Len(t, history, 2)

	// Newest first: balance after both payments, then after the first.
	assert.True(t, history[0].RunningBalance.Equal(decimal.NewFromInt(70000)))
	assert.True(t, history[1].RunningBalance.Equal(decimal.NewFromInt(100000)))
}

func TestFeeEditRecomputesHistoryRetroactively(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	_, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(50000), "")
	assert.NoError(t, err)

	// Raising the fee changes every derived balance, including the running
	// balances of payments recorded before the edit.
	err = f.svc.UpdateStudent(ctx, reg, student.Updates{
		student.FieldProgrammeFee: decimal.NewFromInt(200000),
	})
	assert.NoError(t, err)

	history, err := f.svc.PaymentHistory(ctx, reg)
	assert.NoError(t, err)
	assert.True(t, history[0].RunningBalance.Equal(decimal.NewFromInt(150000)))

	account, err := f.svc.GetAccount(ctx, reg)
	assert.NoError(t, err)
	assert.True(t, account.Balance.Equal(decimal.NewFromInt(150000)))
}

func TestReadsAreIdempotentWithoutWrites(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	_, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(50000), "")
	assert.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(30000), "")
	assert.NoError(t, err)

	// Balances are derived on every read; with no intervening writes,
	// repeated reads must agree exactly.
	account1, err := f.svc.GetAccount(ctx, reg)
	assert.NoError(t, err)
	account2, err := f.svc.GetAccount(ctx, reg)
	assert.NoError(t, err)
	assert.Equal(t, account1, account2)

	history1, err := f.svc.PaymentHistory(ctx, reg)
	assert.NoError(t, err)
	history2, err := f.svc.PaymentHistory(ctx, reg)
	assert.NoError(t, err)
	assert.Equal(t, history1, history2)
}

func TestPaymentHistoryUnknownStudent(t *testing.T) {
	f := newFixture()

	_, err := f.svc.PaymentHistory(context.Background(), "IMPTECH-WD-2025-999")
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// UPDATES AND DELETION
// ══════════════════════════════════════════════════════════════════════════════

func TestUpdateStudentAllowList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	assert.ErrorIs(t, f.svc.UpdateStudent(ctx, reg, student.Updates{}), shared.ErrNoFieldsToUpdate)

	assert.ErrorIs(t, f.svc.UpdateStudent(ctx, reg, student.Updates{
		student.Field("reg_number"): "IMPTECH-WD-2025-999",
	}), shared.ErrUnknownField)

	assert.ErrorIs(t, f.svc.UpdateStudent(ctx, reg, student.Updates{
		student.FieldProgrammeFee: decimal.NewFromInt(-1),
	}), shared.ErrNegativeValue)

	assert.ErrorIs(t, f.svc.UpdateStudent(ctx, reg, student.Updates{
		student.FieldStatus: "Suspended",
	}), shared.ErrInvalidInput)

	assert.NoError(t, f.svc.UpdateStudent(ctx, reg, student.Updates{
		student.FieldName:        "Adaeze Obi-Eze",
		student.FieldScholarship: true,
	}))

	st, err := f.svc.GetStudent(ctx, reg)
	assert.NoError(t, err)
	assert.Equal(t, "Adaeze Obi-Eze", st.Name)
	assert.True(t, st.Scholarship)
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	assert.NoError(t, f.svc.UpdateStatus(ctx, reg, student.StatusGraduated))
	st, _ := f.svc.GetStudent(ctx, reg)
	assert.Equal(t, student.StatusGraduated, st.Status)

	// Any transition is allowed, including re-activation.
	assert.NoError(t, f.svc.UpdateStatus(ctx, reg, student.StatusActive))

	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, reg, "Expelled"), shared.ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateStatus(ctx, "IMPTECH-WD-2025-999", student.StatusActive), shared.ErrStudentNotFound)
}

func TestDeleteStudentCascades(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reg := registered(t, f, 150000)

	_, err := f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	_, err = f.svc.RecordPayment(ctx, reg, decimal.NewFromInt(20000), "")
	assert.NoError(t, err)

	assert.NoError(t, f.svc.DeleteStudent(ctx, reg))

	_, err = f.svc.GetStudent(ctx, reg)
	assert.ErrorIs(t, err, shared.ErrStudentNotFound)
	assert.Empty(t, f.store.payments)

	assert.ErrorIs(t, f.svc.DeleteStudent(ctx, reg), shared.ErrStudentNotFound)
}

// ══════════════════════════════════════════════════════════════════════════════
// EVENTS
// ══════════════════════════════════════════════════════════════════════════════

func TestLedgerEventsArePublished(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	res, err := f.svc.Register(ctx, webDevDraft(150000), decimal.Zero, "")
	assert.NoError(t, err)

	pay, err := f.svc.RecordPayment(ctx, res.Student.RegNumber, decimal.NewFromInt(10000), "")
	assert.NoError(t, err)
	assert.NoError(t, f.svc.DeletePayment(ctx, pay.Payment.PaymentID))
	assert.NoError(t, f.svc.DeleteStudent(ctx, res.Student.RegNumber))

	assert.Equal(t, []shared.EventType{
		shared.EventStudentRegistered,
		shared.EventPaymentRecorded,
		shared.EventPaymentDeleted,
		shared.EventStudentDeleted,
	}, f.events.typesSeen())
}
