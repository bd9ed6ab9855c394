package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/totehq/tote/internal/admin"
	"github.com/totehq/tote/internal/api"
	"github.com/totehq/tote/internal/app"
)

type command func(ctx context.Context, env *app.Env, args []string, out io.Writer) error

var commands = map[string]command{
	"signup":  signupCmd,
	"address": addressCmd,
	"admin":   adminCmd,
}

var errUsage = errors.New("invalid arguments")

func newFlagSet(name string, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

func signupCmd(ctx context.Context, env *app.Env, args []string, out io.Writer) error {
	fs := newFlagSet("signup", out)
	var p api.Profile
	fs.StringVar(&p.Name, "name", "", "first name")
	fs.StringVar(&p.Surname, "surname", "", "last name")
	fs.StringVar(&p.Gender, "gender", "", "male or female")
	fs.StringVar(&p.Email, "email", "", "email address")
	fs.StringVar(&p.Phone, "phone", "", "10 digit phone number")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	u, err := env.Accounts.Signup(ctx, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "created %s %s (%s), now logged in\n", u.Name, u.Surname, u.ID)
	return nil
}

func addressFlags(fs *flag.FlagSet, a *api.Address) {
	fs.StringVar(&a.Area, "area", "", "street and area")
	fs.StringVar(&a.City, "city", "", "city")
	fs.StringVar(&a.State, "state", "", "state")
	fs.Var(flexValue{&a.Pincode}, "pincode", "6 digit pincode")
	fs.StringVar(&a.Landmark, "landmark", "", "landmark (optional)")
	fs.StringVar(&a.AlternatePhone, "alt-phone", "", "alternate phone (optional)")
	fs.StringVar(&a.AddressType, "type", "Home", "Home or Work")
}

func addressCmd(ctx context.Context, env *app.Env, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: address add|update|delete", errUsage)
	}
	fs := newFlagSet("address "+args[0], out)
	var a api.Address
	switch args[0] {
	case "add":
		addressFlags(fs, &a)
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		created, err := env.Accounts.AddAddress(ctx, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "added address %s\n", created.ID)
	case "update":
		fs.StringVar(&a.ID, "id", "", "address id")
		addressFlags(fs, &a)
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		updated, err := env.Accounts.EditAddress(ctx, a)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "updated address %s\n", updated.ID)
	case "delete":
		id := fs.String("id", "", "address id")
		if err := fs.Parse(args[1:]); err != nil {
			return errUsage
		}
		if err := env.Accounts.DeleteAddress(ctx, *id); err != nil {
			return err
		}
		fmt.Fprintf(out, "deleted address %s\n", *id)
	default:
		return fmt.Errorf("%w: unknown address command %q", errUsage, args[0])
	}
	return nil
}

func productFlags(fs *flag.FlagSet, in *api.ProductInput) *string {
	fs.StringVar(&in.Title, "title", "", "product title")
	fs.Float64Var(&in.Price, "price", 0, "price in rupees")
	fs.StringVar(&in.Category, "category", "", "men, women or kids")
	fs.Float64Var(&in.Rating, "rating", 0, "rating 0-5")
	fs.StringVar(&in.SellerID, "seller", "", "seller id")
	fs.IntVar(&in.Stock, "stock", 0, "units in stock")
	fs.StringVar(&in.Section, "section", "", "section id")
	fs.StringVar(&in.Type, "type", "", "type id")
	return fs.String("images", "", "comma-separated image URLs")
}

func adminCmd(ctx context.Context, env *app.Env, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: admin products|sections|types|create-product|update-product|create-section|section-image|create-type|type-image", errUsage)
	}
	console := env.Admin
	fs := newFlagSet("admin "+args[0], out)
	rest := args[1:]

	switch args[0] {
	case "products":
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		rows, err := console.ListProducts(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderProducts(rows))
	case "sections":
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		sections, err := console.Sections(ctx)
		if err != nil {
			return err
		}
		for _, sec := range sections {
			fmt.Fprintf(out, "%s\t%s\n", sec.ID, sec.Name)
		}
	case "types":
		section := fs.String("section", "", "only types under this section id")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		var (
			types []api.Type
			err   error
		)
		if *section != "" {
			types, err = console.SectionTypes(ctx, *section)
		} else {
			types, err = console.Types(ctx)
		}
		if err != nil {
			return err
		}
		for _, t := range types {
			fmt.Fprintf(out, "%s\t%s\t%s\n", t.ID, t.Name, t.Section.ID)
		}
	case "create-product", "update-product":
		var in api.ProductInput
		id := ""
		if args[0] == "update-product" {
			fs.StringVar(&id, "id", "", "product id")
		}
		images := productFlags(fs, &in)
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		in.Images = admin.ParseImages(*images)
		var (
			p   api.Product
			err error
		)
		if args[0] == "create-product" {
			p, err = console.CreateProduct(ctx, in)
		} else {
			p, err = console.UpdateProduct(ctx, id, in)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", p.ID, p.Title)
	case "create-section":
		name := fs.String("name", "", "section name")
		images := fs.String("images", "", "comma-separated image URLs")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		s, err := console.CreateSection(ctx, *name, admin.ParseImages(*images))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", s.ID, s.Name)
	case "create-type":
		name := fs.String("name", "", "type name")
		section := fs.String("section", "", "section id")
		images := fs.String("images", "", "comma-separated image URLs")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		t, err := console.CreateType(ctx, *name, *section, admin.ParseImages(*images))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s\n", t.ID, t.Name)
	case "section-image", "type-image":
		id := fs.String("id", "", "section or type id")
		image := fs.String("image", "", "image URL")
		if err := fs.Parse(rest); err != nil {
			return errUsage
		}
		set := console.SetSectionImage
		if args[0] == "type-image" {
			set = console.SetTypeImage
		}
		if err := set(ctx, *id, *image); err != nil {
			return err
		}
		fmt.Fprintln(out, "image updated")
	default:
		return fmt.Errorf("%w: unknown admin command %q", errUsage, args[0])
	}
	return nil
}

func renderProducts(rows []admin.Row) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "CATEGORY", "PRICE", "STOCK", "SECTION", "TYPE")
	for _, r := range rows {
		t.Row(r.ID, r.Title, r.Category, strconv.FormatFloat(r.Price, 'f', -1, 64), strconv.Itoa(r.Stock), r.Section, r.Type)
	}
	return t.Render()
}

// flexValue lets a pincode be passed as a flag.
type flexValue struct{ dst *api.FlexString }

func (v flexValue) String() string {
	if v.dst == nil {
		return ""
	}
	return string(*v.dst)
}

func (v flexValue) Set(s string) error {
	*v.dst = api.FlexString(s)
	return nil
}
