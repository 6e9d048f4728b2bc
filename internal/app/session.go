package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Gunvolt24/partstore/internal/api"
	"github.com/Gunvolt24/partstore/internal/cart"
	"github.com/Gunvolt24/partstore/internal/domain"
	"github.com/Gunvolt24/partstore/internal/ports"
	"github.com/Gunvolt24/partstore/internal/usecase"
	"github.com/Gunvolt24/partstore/pkg/ctxmeta"
	"github.com/Gunvolt24/partstore/pkg/httpx"
	"github.com/google/uuid"
)

// maxLineQuantity — верхняя граница количества одной позиции, задаваемого командой qty.
const maxLineQuantity = 99

// errQuit — команда quit.
var errQuit = errors.New("quit")

// Session — интерактивная сессия покупателя/администратора: построчные команды
// поверх сервисов каталога, корзины, оформления и админки.
type Session struct {
	catalog  *usecase.CatalogService
	checkout *usecase.CheckoutService
	admin    *usecase.AdminService
	cart     *cart.Store
	log      ports.Logger

	debounce time.Duration
	live     *usecase.SearchDebouncer // поиск по мере ввода (команда type)

	id  string
	out *syncWriter
}

// syncWriter — вывод сессии; результаты живого поиска печатаются из другой горутины.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

func NewSession(
	catalog *usecase.CatalogService,
	checkout *usecase.CheckoutService,
	admin *usecase.AdminService,
	store *cart.Store,
	log ports.Logger,
	debounce time.Duration,
) *Session {
	return &Session{
		catalog:  catalog,
		checkout: checkout,
		admin:    admin,
		cart:     store,
		log:      log,
		debounce: debounce,
		id:       uuid.NewString(),
	}
}

// Serve читает команды из in до EOF, quit или отмены контекста.
func (s *Session) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.out = &syncWriter{w: out}
	ctx = ctxmeta.WithSessionID(ctx, s.id)

	s.live = usecase.NewSearchDebouncer(s.debounce, s.catalog.Search, s.printLive)
	defer s.live.Stop()

	s.log.Infof(ctx, "session started")
	fmt.Fprintln(s.out, `car parts storefront, type "help" for commands`)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := s.exec(ctxmeta.WithRequestID(ctx, uuid.NewString()), line)
		switch {
		case errors.Is(err, errQuit):
			s.log.Infof(ctx, "session closed by user")
			return nil
		case err != nil:
			fmt.Fprintf(s.out, "error: %s\n", describe(err))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

// exec выполняет одну команду.
func (s *Session) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help":
		fmt.Fprint(s.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit

	case "brands":
		return s.brands(ctx)
	case "models":
		return s.models(ctx, rest)
	case "parts":
		return s.parts(ctx, rest)
	case "product":
		return s.product(ctx, rest)
	case "search":
		return s.search(ctx, rest)
	case "type":
		s.live.Submit(ctx, rest)
		return nil
	case "suggest":
		return s.suggest(ctx, rest)
	case "popular":
		return s.popular(ctx)

	case "add":
		return s.add(ctx, rest)
	case "qty":
		return s.qty(rest)
	case "rm":
		id, err := parseID(rest)
		if err != nil {
			return err
		}
		s.cart.RemoveItem(id)
		s.printCart()
		return nil
	case "cart":
		s.printCart()
		return nil
	case "checkout":
		return s.placeOrder(ctx, rest)

	case "login":
		return s.login(ctx, rest)
	case "orders":
		return s.orders(ctx)
	case "status":
		return s.status(ctx, rest)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (s *Session) brands(ctx context.Context) error {
	brands, err := s.catalog.Brands(ctx)
	if err != nil {
		return err
	}
	tw := s.table()
	for _, b := range brands {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", b.ID, b.Name, b.Description)
	}
	return tw.Flush()
}

func (s *Session) models(ctx context.Context, arg string) error {
	brandID, err := parseID(arg)
	if err != nil {
		return err
	}
	models, err := s.catalog.Models(ctx, brandID)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Fprintln(s.out, "no models")
		return nil
	}
	tw := s.table()
	for _, m := range models {
		fmt.Fprintf(tw, "%d\t%s\n", m.ID, m.Name)
	}
	return tw.Flush()
}

// parts <brand> [model] [sort]
func (s *Session) parts(ctx context.Context, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return errors.New("usage: parts <brand> [model] [sort]")
	}
	brandID, err := parseID(fields[0])
	if err != nil {
		return err
	}
	var modelID int64
	var sortBy string
	for _, f := range fields[1:] {
		if id, perr := strconv.ParseInt(f, 10, 64); perr == nil {
			modelID = id
			continue
		}
		sortBy = f
	}

	products, err := s.catalog.Parts(ctx, brandID, modelID, sortBy)
	if err != nil {
		return err
	}
	s.printProducts(products)
	return nil
}

func (s *Session) product(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	p, err := s.catalog.ProductDetails(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "#%d %s\nprice: %.2f\nstock: %d\n", p.ID, p.Name, p.Price, p.StockQuantity)
	if p.Description != "" {
		fmt.Fprintln(s.out, p.Description)
	}
	return nil
}

func (s *Session) search(ctx context.Context, q string) error {
	products, err := s.catalog.Search(ctx, q)
	if err != nil {
		return err
	}
	s.printProducts(products)
	return nil
}

func (s *Session) printLive(r usecase.SearchResult) {
	if r.Err != nil {
		if !errors.Is(r.Err, context.Canceled) {
			fmt.Fprintf(s.out, "search %q: error: %s\n", r.Query, describe(r.Err))
		}
		return
	}
	fmt.Fprintf(s.out, "search %q:\n", r.Query)
	s.printProducts(r.Products)
}

func (s *Session) suggest(ctx context.Context, q string) error {
	suggestions, err := s.catalog.Suggestions(ctx, q)
	if err != nil {
		return err
	}
	for _, sg := range suggestions {
		fmt.Fprintf(s.out, "%s (%s)\n", sg.Text, sg.Type)
	}
	return nil
}

func (s *Session) popular(ctx context.Context) error {
	terms, err := s.catalog.Popular(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, strings.Join(terms, ", "))
	return nil
}

func (s *Session) add(ctx context.Context, arg string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	p, err := s.catalog.ProductDetails(ctx, id)
	if err != nil {
		return err
	}
	if !p.InStock() {
		return fmt.Errorf("%s is out of stock", p.Name)
	}
	s.cart.AddItem(p)
	s.printCart()
	return nil
}

// qty <id> <n>; n <= 0 удаляет позицию.
func (s *Session) qty(arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return errors.New("usage: qty <id> <n>")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("bad quantity %q", fields[1])
	}
	s.cart.SetQuantity(id, httpx.ClampInt(n, 0, maxLineQuantity))
	s.printCart()
	return nil
}

// checkout name|email|phone|address
func (s *Session) placeOrder(ctx context.Context, arg string) error {
	parts := strings.Split(arg, "|")
	if len(parts) < 3 {
		return errors.New("usage: checkout <name>|<email>|<phone>|<address>")
	}
	customer := domain.Customer{Name: parts[0], Email: parts[1], Phone: parts[2]}
	if len(parts) > 3 {
		customer.Address = strings.Join(parts[3:], "|")
	}

	order, err := s.checkout.Checkout(ctx, customer, s.cart)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "order #%d placed, status %s, total %.2f\n", order.ID, order.Status, order.TotalAmount)
	return nil
}

func (s *Session) login(ctx context.Context, arg string) error {
	email, password, ok := strings.Cut(arg, " ")
	if !ok {
		return errors.New("usage: login <email> <password>")
	}
	if _, err := s.admin.Login(ctx, email, strings.TrimSpace(password)); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "logged in")
	return nil
}

func (s *Session) orders(ctx context.Context) error {
	orders, err := s.admin.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "no orders")
		return nil
	}
	tw := s.table()
	for _, o := range orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%.2f\n", o.ID, o.CustomerName, o.Status, o.TotalAmount)
	}
	return tw.Flush()
}

func (s *Session) status(ctx context.Context, arg string) error {
	fields := strings.Fields(arg)
	if len(fields) != 2 {
		return errors.New("usage: status <order id> <status>")
	}
	id, err := parseID(fields[0])
	if err != nil {
		return err
	}
	order, err := s.admin.UpdateOrderStatus(ctx, id, fields[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "order #%d is now %s\n", order.ID, order.Status)
	return nil
}

func (s *Session) printProducts(products []domain.Product) {
	if len(products) == 0 {
		fmt.Fprintln(s.out, "nothing found")
		return
	}
	tw := s.table()
	for _, p := range products {
		stock := "in stock"
		if !p.InStock() {
			stock = "out of stock"
		}
		fmt.Fprintf(tw, "%d\t%s\t%.2f\t%s\n", p.ID, p.Name, p.Price, stock)
	}
	_ = tw.Flush()
}

func (s *Session) printCart() {
	items := s.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "cart is empty")
		return
	}
	tw := s.table()
	for _, it := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d x %.2f\t%.2f\n", it.Product.ID, it.Product.Name, it.Quantity, it.Product.Price, it.Subtotal())
	}
	fmt.Fprintf(tw, "\titems: %d\ttotal:\t%.2f\n", s.cart.TotalItemCount(), s.cart.TotalPrice())
	_ = tw.Flush()
}

func (s *Session) table() *tabwriter.Writer {
	return tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("bad id %q", arg)
	}
	return id, nil
}

// describe — короткое сообщение об ошибке для пользователя.
func describe(err error) string {
	switch {
	case errors.Is(err, api.ErrNotFound):
		return "not found"
	case errors.Is(err, api.ErrUnauthorized):
		return "not authorized, use login"
	case errors.Is(err, usecase.ErrEmptyCart):
		return "cart is empty"
	}
	return err.Error()
}

const helpText = `catalog:
  brands                     list brands
  models <brand>             models of a brand
  parts <brand> [model] [sort]  parts for a car (sort: price_asc|price_desc|rating|newest)
  product <id>               product details
  search <query>             search parts
  type <query>               search as you type (debounced)
  suggest <query>            search suggestions
  popular                    popular searches
cart:
  add <id> | qty <id> <n> | rm <id> | cart
  checkout <name>|<email>|<phone>|<address>
admin:
  login <email> <password>
  orders
  status <order id> <pending|confirmed|shipped|delivered|cancelled>
  quit
`
