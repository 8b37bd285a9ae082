package lending

import (
	"context"
	"time"

	"github.com/xiebiao/unilib/internal/domain/book"
	"github.com/xiebiao/unilib/internal/domain/lending"
	"github.com/xiebiao/unilib/internal/domain/reservation"
	"github.com/xiebiao/unilib/internal/domain/stats"
)

// 教学说明：用例测试的内存Fake仓储
//
// 借阅用例的核心是Saga编排,Fake仓储提供错误注入开关,
// 用来模拟"台账写入失败""统计累加失败"等场景,
// 验证补偿逻辑真的把前面的步骤退回去了

// fakeBookRepo 内存图书仓储(带守卫的原子计数更新)
type fakeBookRepo struct {
	books       map[uint]*book.Book
	findErr     error // FindByID错误注入
	updateErr   error // UpdateAvailableCopies错误注入
	updateCalls int   // UpdateAvailableCopies调用次数
}

func newFakeBookRepo(books ...*book.Book) *fakeBookRepo {
	f := &fakeBookRepo{books: make(map[uint]*book.Book)}
	for _, b := range books {
		f.books[b.ID] = b
	}
	return f
}

func (f *fakeBookRepo) Create(ctx context.Context, b *book.Book) error { return nil }

func (f *fakeBookRepo) FindByID(ctx context.Context, id uint) (*book.Book, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	b, ok := f.books[id]
	if !ok {
		return nil, book.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeBookRepo) FindByISBN(ctx context.Context, isbn string) (*book.Book, error) {
	return nil, book.ErrBookNotFound
}

func (f *fakeBookRepo) Update(ctx context.Context, b *book.Book) error { return nil }
func (f *fakeBookRepo) Delete(ctx context.Context, id uint) error      { return nil }

func (f *fakeBookRepo) Search(ctx context.Context, query string) ([]*book.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) List(ctx context.Context, params book.ListParams) ([]*book.Book, error) {
	return nil, nil
}

func (f *fakeBookRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(f.books)), nil
}

func (f *fakeBookRepo) LockByID(ctx context.Context, id uint) (*book.Book, error) {
	return f.FindByID(ctx, id)
}

// UpdateAvailableCopies 与MySQL实现同样的双向守卫:
// 0 <= available + delta <= total,否则不落地并返回ErrNotAvailable
func (f *fakeBookRepo) UpdateAvailableCopies(ctx context.Context, id uint, delta int) error {
	f.updateCalls++
	if f.updateErr != nil {
		return f.updateErr
	}
	b, ok := f.books[id]
	if !ok {
		return book.ErrBookNotFound
	}
	next := b.AvailableCopies + delta
	if next < 0 || next > b.TotalCopies {
		return book.ErrNotAvailable
	}
	b.AvailableCopies = next
	return nil
}

// fakeLendingRepo 内存借阅台账
type fakeLendingRepo struct {
	borrowings map[uint]*lending.Borrowing
	nextID     uint
	createErr  error // Create错误注入
}

func newFakeLendingRepo() *fakeLendingRepo {
	return &fakeLendingRepo{borrowings: make(map[uint]*lending.Borrowing), nextID: 1}
}

func (f *fakeLendingRepo) Create(ctx context.Context, b *lending.Borrowing) error {
	if f.createErr != nil {
		return f.createErr
	}
	b.ID = f.nextID
	f.nextID++
	f.borrowings[b.ID] = b
	return nil
}

func (f *fakeLendingRepo) FindByID(ctx context.Context, id uint) (*lending.Borrowing, error) {
	b, ok := f.borrowings[id]
	if !ok {
		return nil, lending.ErrBorrowingNotFound
	}
	return b, nil
}

func (f *fakeLendingRepo) FindByTicketNo(ctx context.Context, ticketNo string) (*lending.Borrowing, error) {
	for _, b := range f.borrowings {
		if b.TicketNo == ticketNo {
			return b, nil
		}
	}
	return nil, lending.ErrBorrowingNotFound
}

func (f *fakeLendingRepo) FindActiveForUserAndBook(ctx context.Context, bookID, userID uint) (*lending.Borrowing, error) {
	// 最早的未归还记录,按ID升序即创建顺序
	for id := uint(1); id < f.nextID; id++ {
		b, ok := f.borrowings[id]
		if ok && b.BookID == bookID && b.UserID == userID && !b.IsReturned {
			return b, nil
		}
	}
	return nil, lending.ErrNoActiveBorrowing
}

func (f *fakeLendingRepo) Update(ctx context.Context, b *lending.Borrowing) error {
	if _, ok := f.borrowings[b.ID]; !ok {
		return lending.ErrBorrowingNotFound
	}
	f.borrowings[b.ID] = b
	return nil
}

func (f *fakeLendingRepo) ListActive(ctx context.Context) ([]*lending.Borrowing, error) {
	var result []*lending.Borrowing
	for id := uint(1); id < f.nextID; id++ {
		if b, ok := f.borrowings[id]; ok && !b.IsReturned {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeLendingRepo) ListOverdue(ctx context.Context, asOf time.Time) ([]*lending.Borrowing, error) {
	var result []*lending.Borrowing
	for id := uint(1); id < f.nextID; id++ {
		if b, ok := f.borrowings[id]; ok && b.IsOverdue(asOf) {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeLendingRepo) ListByUserID(ctx context.Context, userID uint) ([]*lending.Borrowing, error) {
	var result []*lending.Borrowing
	for id := uint(1); id < f.nextID; id++ {
		if b, ok := f.borrowings[id]; ok && b.UserID == userID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeLendingRepo) ListByBookID(ctx context.Context, bookID uint) ([]*lending.Borrowing, error) {
	var result []*lending.Borrowing
	for id := uint(1); id < f.nextID; id++ {
		if b, ok := f.borrowings[id]; ok && b.BookID == bookID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (f *fakeLendingRepo) CountActive(ctx context.Context) (int64, error) {
	active, _ := f.ListActive(ctx)
	return int64(len(active)), nil
}

func (f *fakeLendingRepo) CountActiveByBook(ctx context.Context, bookID uint) (int64, error) {
	var n int64
	for _, b := range f.borrowings {
		if b.BookID == bookID && !b.IsReturned {
			n++
		}
	}
	return n, nil
}

func (f *fakeLendingRepo) CountActiveByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	for _, b := range f.borrowings {
		if b.UserID == userID && !b.IsReturned {
			n++
		}
	}
	return n, nil
}

// activeCount 某书当前未归还的记录数(断言辅助)
func (f *fakeLendingRepo) activeCount(bookID uint) int {
	n, _ := f.CountActiveByBook(context.Background(), bookID)
	return int(n)
}

// fakeStatsRepo 内存统计投影
type fakeStatsRepo struct {
	borrows    map[uint]int64
	addErr     error // AddBorrows错误注入
	addCalls   int
	lastDeltas []int64
}

func newFakeStatsRepo() *fakeStatsRepo {
	return &fakeStatsRepo{borrows: make(map[uint]int64)}
}

func (f *fakeStatsRepo) FindByBook(ctx context.Context, bookID uint) (*stats.BookStatistics, error) {
	return &stats.BookStatistics{BookID: bookID, TotalBorrows: f.borrows[bookID]}, nil
}

func (f *fakeStatsRepo) AddBorrows(ctx context.Context, bookID uint, delta int64) error {
	f.addCalls++
	f.lastDeltas = append(f.lastDeltas, delta)
	if f.addErr != nil {
		return f.addErr
	}
	f.borrows[bookID] += delta
	return nil
}

func (f *fakeStatsRepo) AddReservations(ctx context.Context, bookID uint, delta int64) error {
	return nil
}
func (f *fakeStatsRepo) AddLikes(ctx context.Context, bookID uint, delta int64) error    { return nil }
func (f *fakeStatsRepo) AddComments(ctx context.Context, bookID uint, delta int64) error { return nil }
func (f *fakeStatsRepo) SetRating(ctx context.Context, bookID uint, average float64, count int64) error {
	return nil
}
func (f *fakeStatsRepo) TopBorrowed(ctx context.Context, n int) ([]*stats.BookStatistics, error) {
	return nil, nil
}
func (f *fakeStatsRepo) CreateActivity(ctx context.Context, a *stats.Activity) error { return nil }
func (f *fakeStatsRepo) ListRecentActivities(ctx context.Context, n int) ([]*stats.Activity, error) {
	return nil, nil
}

// fakeReservationService 记录兑现调用的预约服务
type fakeReservationService struct {
	fulfilled  []uint // FulfillNext被调用的bookID
	fulfillErr error
	next       *reservation.Reservation // FulfillNext的返回值
}

func (f *fakeReservationService) Reserve(ctx context.Context, bookID, userID uint) (*reservation.Reservation, bool, error) {
	return nil, false, nil
}

func (f *fakeReservationService) CancelByID(ctx context.Context, reservationID, userID uint) error {
	return nil
}

func (f *fakeReservationService) FulfillNext(ctx context.Context, bookID uint) (*reservation.Reservation, error) {
	f.fulfilled = append(f.fulfilled, bookID)
	if f.fulfillErr != nil {
		return nil, f.fulfillErr
	}
	return f.next, nil
}

func (f *fakeReservationService) PendingCountForBook(ctx context.Context, bookID uint) (int64, error) {
	return 0, nil
}

// testBook 构造测试图书
func testBook(id uint, total, available int) *book.Book {
	return &book.Book{
		ID:              id,
		ISBN:            "9787115428028",
		Title:           "Go语言实战",
		Author:          "William Kennedy",
		TotalCopies:     total,
		AvailableCopies: available,
	}
}
