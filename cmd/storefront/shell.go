package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"eggcelent-store/internal/app"
	"eggcelent-store/internal/logger"
	"eggcelent-store/internal/order"
	"eggcelent-store/internal/product"
	"eggcelent-store/internal/user"
	"eggcelent-store/internal/utils"
)

var (
	errUsage = errors.New("usage")
	errQuit  = errors.New("quit")
)

type command struct {
	usage string
	run   func(ctx context.Context, args []string) error
}

// shell is a line-oriented front end over the storefront services.
type shell struct {
	app      *app.App
	out      io.Writer
	commands map[string]command
}

func newShell(a *app.App, out io.Writer) *shell {
	s := &shell{app: a, out: out}
	s.commands = map[string]command{
		"help":       {"help", s.help},
		"products":   {"products [category] [search...]", s.products},
		"categories": {"categories", s.categories},
		"featured":   {"featured", s.featured},
		"product":    {"product <id>", s.product},
		"add":        {"add <id> [qty]", s.add},
		"qty":        {"qty <id> <qty>", s.qty},
		"remove":     {"remove <id>", s.remove},
		"cart":       {"cart", s.cart},
		"clear":      {"clear", s.clear},
		"checkout":   {`checkout "<name>" "<phone>" "<address>" ["<notes>"]`, s.checkout},
		"orders":     {"orders", s.orders},
		"order":      {"order <id>", s.order},
		"login":      {"login <email> <password>", s.login},
		"register":   {`register "<name>" <email> <password> [phone]`, s.register},
		"profile":    {"profile [name|email|phone|address|avatar <value>]...", s.profile},
		"logout":     {"logout", s.logout},
		"stats":      {"stats", s.stats},
		"quit":       {"quit", func(context.Context, []string) error { return errQuit }},
	}
	return s
}

// Run reads commands from in until EOF or quit.
func (s *shell) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(s.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out)
			return scanner.Err()
		}

		if err := s.Exec(ctx, scanner.Text()); errors.Is(err, errQuit) {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

// Exec runs one command line and reports failures to the user.
func (s *shell) Exec(ctx context.Context, line string) error {
	args := utils.SplitArgs(line)
	if len(args) == 0 {
		return nil
	}

	name := strings.ToLower(args[0])
	cmd, ok := s.commands[name]
	if !ok {
		fmt.Fprintf(s.out, "unknown command %q, try help\n", args[0])
		return nil
	}

	ctx, done := logger.Track(ctx, name)
	err := cmd.run(ctx, args[1:])
	if errors.Is(err, errQuit) {
		done(nil)
		return err
	}
	done(err)

	switch {
	case err == nil:
	case errors.Is(err, errUsage):
		fmt.Fprintf(s.out, "usage: %s\n", cmd.usage)
	default:
		fmt.Fprintf(s.out, "error: %s\n", err)
	}
	return err
}

func (s *shell) help(context.Context, []string) error {
	names := make([]string, 0, len(s.commands))
	for name := range s.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(s.out, "  %s\n", s.commands[name].usage)
	}
	return nil
}

func (s *shell) products(_ context.Context, args []string) error {
	var filter product.ProductFilter
	if len(args) > 0 {
		filter.Category = args[0]
		filter.Search = strings.Join(args[1:], " ")
	}

	list := s.app.Catalog.List(filter)
	if len(list) == 0 {
		fmt.Fprintln(s.out, "no products found")
		return nil
	}
	for _, p := range list {
		s.printProduct(p)
	}
	return nil
}

func (s *shell) categories(context.Context, []string) error {
	for _, c := range s.app.Catalog.Categories() {
		fmt.Fprintf(s.out, "%s %-8s %s\n", c.Emoji, c.ID, c.Label)
	}
	return nil
}

func (s *shell) featured(context.Context, []string) error {
	for _, p := range s.app.Catalog.Featured() {
		s.printProduct(p)
	}
	return nil
}

func (s *shell) product(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	p, err := s.app.Catalog.ByID(args[0])
	if err != nil {
		return err
	}

	s.printProduct(p)
	if p.Description != "" {
		fmt.Fprintf(s.out, "    %s\n", p.Description)
	}
	for _, h := range p.Highlights {
		fmt.Fprintf(s.out, "    • %s\n", h)
	}
	fmt.Fprintf(s.out, "    ★ %.1f (%d reviews)\n", p.Rating, p.ReviewCount)
	if n := s.app.Cart.ItemQuantity(p.ID); n > 0 {
		fmt.Fprintf(s.out, "    in cart: %d\n", n)
	}
	return nil
}

func (s *shell) add(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	qty := 1
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		qty = n
	}

	p, err := s.app.Catalog.ByID(args[0])
	if err != nil {
		return err
	}
	if !p.InStock {
		return fmt.Errorf("%s is out of stock", p.Name)
	}

	s.app.Cart.AddToCart(ctx, p, qty)
	fmt.Fprintf(s.out, "added %s, %d in cart\n", p.Name, s.app.Cart.ItemQuantity(p.ID))
	return nil
}

func (s *shell) qty(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return errUsage
	}

	s.app.Cart.UpdateQuantity(ctx, args[0], n)
	return s.cart(ctx, nil)
}

func (s *shell) remove(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	s.app.Cart.RemoveFromCart(ctx, args[0])
	return s.cart(ctx, nil)
}

func (s *shell) cart(context.Context, []string) error {
	c := s.app.Cart.Snapshot()
	if c.IsEmpty() {
		fmt.Fprintln(s.out, "your cart is empty")
		return nil
	}

	for _, l := range c.Lines {
		fmt.Fprintf(s.out, "%s %-3s %-24s ×%d  %s\n", l.Emoji, l.ID, l.Name, l.Quantity, utils.FormatPeso(l.Subtotal()))
	}

	subtotal := c.Total()
	fee := order.DeliveryFee(subtotal, s.app.Cart.DeliveryFee())
	fmt.Fprintf(s.out, "items: %d\n", c.Count())
	fmt.Fprintf(s.out, "subtotal: %s\n", utils.FormatPeso(subtotal))
	fmt.Fprintf(s.out, "delivery: %s\n", utils.FormatPeso(fee))
	fmt.Fprintf(s.out, "total: %s\n", utils.FormatPeso(subtotal.Add(fee)))
	return nil
}

func (s *shell) clear(ctx context.Context, _ []string) error {
	s.app.Cart.ClearCart(ctx)
	fmt.Fprintln(s.out, "cart cleared")
	return nil
}

func (s *shell) checkout(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errUsage
	}

	info := order.DeliveryInfo{Name: args[0], Phone: args[1], Address: args[2]}
	if len(args) == 4 {
		info.Notes = args[3]
	}
	info = info.Normalize()
	if err := info.Validate(); err != nil {
		return err
	}

	o, err := s.app.Cart.PlaceOrder(ctx, info)
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "order %s placed\n", o.ID)
	s.printOrder(o)
	return nil
}

func (s *shell) orders(context.Context, []string) error {
	orders := s.app.Cart.Orders()
	if len(orders) == 0 {
		fmt.Fprintln(s.out, "no orders yet")
		return nil
	}

	for _, o := range orders {
		fmt.Fprintf(s.out, "%s  %-9s  %2d items  %s  %s\n",
			o.ID, o.Status.Label(), o.Units(), utils.FormatPeso(o.Total), utils.FormatOrderTime(o.CreatedAt))
	}
	return nil
}

func (s *shell) order(_ context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	o, err := s.app.Cart.Order(args[0])
	if err != nil {
		return err
	}
	s.printOrder(o)
	return nil
}

func (s *shell) login(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return errUsage
	}
	for len(args) < 2 {
		args = append(args, "")
	}

	sess, err := s.app.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "welcome, %s\n", sess.Name)
	return nil
}

func (s *shell) register(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return errUsage
	}
	p := user.RegisterParams{Name: args[0], Email: args[1], Password: args[2]}
	if len(args) == 4 {
		p.Phone = args[3]
	}

	sess, err := s.app.Register(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "welcome, %s\n", sess.Name)
	return nil
}

func (s *shell) profile(ctx context.Context, args []string) error {
	if len(args)%2 != 0 {
		return errUsage
	}

	if len(args) > 0 {
		var u user.ProfileUpdate
		for i := 0; i < len(args); i += 2 {
			value := utils.StrPtr(args[i+1])
			switch strings.ToLower(args[i]) {
			case "name":
				u.Name = value
			case "email":
				u.Email = value
			case "phone":
				u.Phone = value
			case "address":
				u.Address = value
			case "avatar":
				u.Avatar = value
			default:
				return errUsage
			}
		}
		if _, err := s.app.Session.UpdateProfile(ctx, u); err != nil {
			return err
		}
	}

	sess, ok := s.app.Session.Current()
	if !ok {
		return user.ErrNotAuthenticated
	}

	st := s.app.Cart.OrderStats()
	fmt.Fprintf(s.out, "%s %s <%s>\n", sess.Avatar, sess.Name, sess.Email)
	fmt.Fprintf(s.out, "phone: %s\n", orDash(sess.Phone))
	fmt.Fprintf(s.out, "address: %s\n", orDash(sess.Address))
	fmt.Fprintf(s.out, "member since: %s\n", utils.FormatMemberSince(sess.JoinedAt))
	fmt.Fprintf(s.out, "orders: %d  eggs bought: %d  in cart: %d\n", st.Orders, st.Eggs, st.InCart)
	return nil
}

func (s *shell) logout(ctx context.Context, _ []string) error {
	if !s.app.Session.IsAuthenticated() {
		return user.ErrNotAuthenticated
	}
	if err := s.app.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "signed out")
	return nil
}

func (s *shell) stats(context.Context, []string) error {
	st := s.app.Cart.OrderStats()
	fmt.Fprintf(s.out, "orders: %d\n", st.Orders)
	fmt.Fprintf(s.out, "units bought: %d\n", st.Units)
	fmt.Fprintf(s.out, "eggs bought: %d\n", st.Eggs)
	fmt.Fprintf(s.out, "spent: %s\n", utils.FormatPesoWhole(st.Spent))
	fmt.Fprintf(s.out, "in cart: %d\n", st.InCart)
	return nil
}

func (s *shell) printProduct(p product.Product) {
	stock := ""
	if !p.InStock {
		stock = " (out of stock)"
	}
	badge := ""
	if p.Badge != "" {
		badge = " [" + p.Badge + "]"
	}
	fmt.Fprintf(s.out, "%s %-3s %-24s %8s / %s%s%s\n", p.Emoji, p.ID, p.Name, utils.FormatPeso(p.Price), p.Unit, badge, stock)
}

func (s *shell) printOrder(o order.Order) {
	fmt.Fprintf(s.out, "%s  %s  %s\n", o.ID, o.Status.Label(), utils.FormatOrderTime(o.CreatedAt))
	for _, it := range o.Items {
		fmt.Fprintf(s.out, "  %s %-24s ×%d  %s\n", it.Emoji, it.Name, it.Quantity, utils.FormatPeso(it.Subtotal()))
	}
	fmt.Fprintf(s.out, "  subtotal: %s\n", utils.FormatPeso(o.Subtotal))
	fmt.Fprintf(s.out, "  delivery: %s\n", utils.FormatPeso(o.DeliveryFee))
	fmt.Fprintf(s.out, "  total: %s\n", utils.FormatPeso(o.Total))
	fmt.Fprintf(s.out, "  deliver to: %s, %s, %s\n", o.DeliveryInfo.Name, o.DeliveryInfo.Phone, o.DeliveryInfo.Address)
	if o.DeliveryInfo.Notes != "" {
		fmt.Fprintf(s.out, "  notes: %s\n", o.DeliveryInfo.Notes)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
