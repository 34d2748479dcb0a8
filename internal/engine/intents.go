package engine

import (
	"context"
	"strings"

	"github.com/gurukul/gdl/internal/model"
)

// Intents are the user-facing mutations. Each one validates its input,
// applies the change to the replica synchronously, and enqueues the matching
// envelope for later transmission. No intent ever waits on the network.

// AdmissionInput is the data collected for a new student.
type AdmissionInput struct {
	Name       string
	FatherName string
	Contact    string
	SeatNo     string
	Shift      model.Shift
	MonthlyFee model.Rupees
	Gender     string
	Address    string
	JoinDate   string
}

// Login authenticates against the endpoint and persists the session.
// This is the one intent that requires connectivity.
func (e *Engine) Login(ctx context.Context, username, password string) (model.User, error) {
	if strings.TrimSpace(username) == "" {
		return model.User{}, &ValidationError{Field: "username", Message: "required"}
	}
	if password == "" {
		return model.User{}, &ValidationError{Field: "password", Message: "required"}
	}
	user, err := e.remote.Login(ctx, username, password)
	if err != nil {
		return model.User{}, err
	}
	if err := e.store.SetSession(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Logout clears the stored session. Replica, queue, and checkpoint survive;
// the next user on this device keeps the synced data.
func (e *Engine) Logout(ctx context.Context) error {
	return e.store.ClearSession(ctx)
}

// Admit registers a new student locally and queues the admission.
func (e *Engine) Admit(ctx context.Context, in AdmissionInput) (model.Student, error) {
	if strings.TrimSpace(in.Name) == "" {
		return model.Student{}, &ValidationError{Field: "name", Message: "required"}
	}
	if in.MonthlyFee < 0 {
		return model.Student{}, &ValidationError{Field: "fee", Message: "must not be negative"}
	}
	joinDate := strings.TrimSpace(in.JoinDate)
	if joinDate == "" {
		joinDate = model.FormatISO(e.now())
	} else if _, ok := model.ParseDate(joinDate); !ok {
		return model.Student{}, &ValidationError{Field: "joinDate", Message: "unrecognized date"}
	}
	shift := in.Shift
	if shift == "" {
		shift = model.ShiftFullDay
	}

	student := model.Student{
		ID:         model.FlexString(e.tokens.Generate()),
		Name:       strings.TrimSpace(in.Name),
		FatherName: strings.TrimSpace(in.FatherName),
		Contact:    strings.TrimSpace(in.Contact),
		SeatNo:     model.FlexString(strings.TrimSpace(in.SeatNo)),
		Shift:      shift,
		MonthlyFee: in.MonthlyFee,
		Gender:     in.Gender,
		Address:    strings.TrimSpace(in.Address),
		JoinDate:   joinDate,
		Status:     model.StatusActive,
	}

	if err := e.replica.UpsertStudent(ctx, student); err != nil {
		return model.Student{}, err
	}
	env, err := model.NewEnvelope(model.ActionNewAdmission, student)
	if err != nil {
		return model.Student{}, err
	}
	return student, e.queue.Enqueue(ctx, env)
}

// Pay records a fee collection for a student. The payment is pending until a
// sync cycle patches in the remote transaction id.
func (e *Engine) Pay(ctx context.Context, studentID string, amount model.Rupees, mode string) (model.Payment, error) {
	if amount <= 0 {
		return model.Payment{}, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	student, ok := e.replica.Student(studentID)
	if !ok {
		return model.Payment{}, ErrNoSuchStudent
	}
	user, err := e.Session(ctx)
	if err != nil {
		return model.Payment{}, err
	}
	if mode == "" {
		mode = "Cash"
	}

	now := e.now()
	payment := model.Payment{
		StudentID:   student.ID,
		StudentName: student.Name,
		Amount:      amount,
		Month:       now.Format("Jan"),
		Date:        model.FormatISO(now),
		Timestamp:   now.UnixMilli(),
		Mode:        mode,
		CollectedBy: user.Name,
		Txn:         model.PendingTxn(),
	}

	if err := e.replica.AppendPayment(ctx, payment); err != nil {
		return model.Payment{}, err
	}
	env, err := model.NewEnvelope(model.ActionAddPayment, payment)
	if err != nil {
		return model.Payment{}, err
	}
	return payment, e.queue.Enqueue(ctx, env)
}

// AddExpense records an operational cost.
func (e *Engine) AddExpense(ctx context.Context, item string, amount model.Rupees, date, category string) (model.Expense, error) {
	if strings.TrimSpace(item) == "" {
		return model.Expense{}, &ValidationError{Field: "item", Message: "required"}
	}
	if amount <= 0 {
		return model.Expense{}, &ValidationError{Field: "amount", Message: "must be positive"}
	}
	date = strings.TrimSpace(date)
	if date == "" {
		date = model.FormatISO(e.now())
	} else if _, ok := model.ParseDate(date); !ok {
		return model.Expense{}, &ValidationError{Field: "date", Message: "unrecognized date"}
	}
	if category == "" {
		category = "Gen"
	}

	expense := model.Expense{
		ExpID:     "EXP" + e.tokens.Generate(),
		Date:      date,
		Item:      strings.TrimSpace(item),
		Category:  category,
		Amount:    amount,
		Timestamp: e.now().UnixMilli(),
	}

	if err := e.replica.AppendExpense(ctx, expense); err != nil {
		return model.Expense{}, err
	}
	env, err := model.NewEnvelope(model.ActionAddExpense, expense)
	if err != nil {
		return model.Expense{}, err
	}
	return expense, e.queue.Enqueue(ctx, env)
}

// EditStudent replaces a student record and queues the edit. The caller
// supplies the complete record; partial updates are resolved by the CLI
// against the current replica state.
func (e *Engine) EditStudent(ctx context.Context, s model.Student) error {
	if s.ID == "" {
		return &ValidationError{Field: "id", Message: "required"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "required"}
	}
	if _, ok := e.replica.Student(string(s.ID)); !ok {
		return ErrNoSuchStudent
	}

	if err := e.replica.UpsertStudent(ctx, s); err != nil {
		return err
	}
	env, err := model.NewEnvelope(model.ActionEditStudent, s)
	if err != nil {
		return err
	}
	return e.queue.Enqueue(ctx, env)
}

// RemoveStudent soft-deletes a student and queues the removal. Restricted to
// non-staff roles.
func (e *Engine) RemoveStudent(ctx context.Context, id string) error {
	user, err := e.Session(ctx)
	if err != nil {
		return err
	}
	if user.Role == model.RoleStaff {
		return ErrForbidden
	}

	ok, err := e.replica.MarkLeft(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoSuchStudent
	}

	env, err := model.NewEnvelope(model.ActionDeleteStudent, map[string]string{"id": id})
	if err != nil {
		return err
	}
	return e.queue.Enqueue(ctx, env)
}
