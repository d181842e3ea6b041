package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cart"
	"github.com/dmitrymomot/storefront/pkg/catalog"
)

var printer = message.NewPrinter(language.English)

// render writes v as YAML or hands the writer to text.
func render(cmd *cobra.Command, v any, text func(w io.Writer)) error {
	out := cmd.OutOrStdout()
	if outputFormat == formatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	text(out)
	return nil
}

func table(w io.Writer, header string, rows func(tw *tabwriter.Writer)) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, header)
	rows(tw)
	_ = tw.Flush()
}

// money formats d as US dollars with thousands grouping.
func money(d decimal.Decimal) string {
	d = d.Round(2)
	whole := d.Truncate(0)
	frac := d.Sub(whole).Abs().StringFixed(2)[1:]
	sign := ""
	if d.IsNegative() {
		sign = "-"
		whole = whole.Abs()
	}
	return sign + "$" + printer.Sprintf("%d", whole.IntPart()) + frac
}

type userView struct {
	ID        int64  `yaml:"id"`
	Email     string `yaml:"email"`
	Username  string `yaml:"username"`
	FullName  string `yaml:"full_name,omitempty"`
	Phone     string `yaml:"phone,omitempty"`
	Bio       string `yaml:"bio,omitempty"`
	Active    bool   `yaml:"active"`
	Verified  bool   `yaml:"verified"`
	CreatedAt string `yaml:"created_at,omitempty"`
}

func newUserView(u apiclient.User) userView {
	v := userView{
		ID:       u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
		Phone:    u.Phone,
		Bio:      u.Bio,
		Active:   u.IsActive,
		Verified: u.IsVerified,
	}
	if !u.CreatedAt.IsZero() {
		v.CreatedAt = u.CreatedAt.UTC().Format(time.RFC3339)
	}
	return v
}

func printUser(w io.Writer, u userView) {
	fmt.Fprintf(w, "ID:        %d\n", u.ID)
	fmt.Fprintf(w, "Username:  %s\n", u.Username)
	fmt.Fprintf(w, "Email:     %s\n", u.Email)
	if u.FullName != "" {
		fmt.Fprintf(w, "Full name: %s\n", u.FullName)
	}
	if u.Phone != "" {
		fmt.Fprintf(w, "Phone:     %s\n", u.Phone)
	}
	if u.Bio != "" {
		fmt.Fprintf(w, "Bio:       %s\n", u.Bio)
	}
	if u.CreatedAt != "" {
		fmt.Fprintf(w, "Joined:    %s\n", u.CreatedAt)
	}
}

type productView struct {
	ID            int64  `yaml:"id"`
	Name          string `yaml:"name"`
	Slug          string `yaml:"slug"`
	Price         string `yaml:"price"`
	OriginalPrice string `yaml:"original_price,omitempty"`
	Category      string `yaml:"category,omitempty"`
	Summary       string `yaml:"summary,omitempty"`
	Featured      bool   `yaml:"featured"`
	Free          bool   `yaml:"free"`
}

func newProductView(p catalog.Product) productView {
	v := productView{
		ID:       p.ID,
		Name:     p.Name,
		Slug:     p.Slug,
		Price:    p.Price.StringFixed(2),
		Summary:  p.ShortDescription,
		Featured: p.IsFeatured,
		Free:     p.IsFree,
	}
	if p.Discounted() {
		v.OriginalPrice = p.OriginalPrice.StringFixed(2)
	}
	if p.Category != nil {
		v.Category = p.Category.Name
	}
	return v
}

func productViews(ps []catalog.Product) []productView {
	out := make([]productView, 0, len(ps))
	for _, p := range ps {
		out = append(out, newProductView(p))
	}
	return out
}

func printProducts(w io.Writer, ps []productView) {
	if len(ps) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	table(w, "ID\tNAME\tPRICE\tSLUG", func(tw *tabwriter.Writer) {
		for _, p := range ps {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.ID, p.Name, priceLabel(p), p.Slug)
		}
	})
}

func printProduct(w io.Writer, p productView) {
	fmt.Fprintf(w, "%s (#%d)\n", p.Name, p.ID)
	fmt.Fprintf(w, "Price:    %s\n", priceLabel(p))
	if p.Category != "" {
		fmt.Fprintf(w, "Category: %s\n", p.Category)
	}
	fmt.Fprintf(w, "Slug:     %s\n", p.Slug)
	if p.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", p.Summary)
	}
}

func priceLabel(p productView) string {
	if p.Free {
		return "Free"
	}
	label := money(decimal.RequireFromString(p.Price))
	if p.OriginalPrice != "" {
		label += " (was " + money(decimal.RequireFromString(p.OriginalPrice)) + ")"
	}
	return label
}

type categoryView struct {
	ID          int64  `yaml:"id"`
	Name        string `yaml:"name"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description,omitempty"`
}

type cartItemView struct {
	ProductID int64  `yaml:"product_id"`
	Name      string `yaml:"name"`
	Price     string `yaml:"price"`
	Quantity  int    `yaml:"quantity"`
	Subtotal  string `yaml:"subtotal"`
}

type cartView struct {
	Items     []cartItemView `yaml:"items"`
	ItemCount int            `yaml:"item_count"`
	Total     string         `yaml:"total"`
}

func newCartView(s cart.State) cartView {
	v := cartView{
		Items:     make([]cartItemView, 0, len(s.Items)),
		ItemCount: s.ItemCount,
		Total:     s.Total.StringFixed(2),
	}
	for _, it := range s.Items {
		v.Items = append(v.Items, cartItemView{
			ProductID: it.Product.ID,
			Name:      it.Product.Name,
			Price:     it.Product.Price.StringFixed(2),
			Quantity:  it.Quantity,
			Subtotal:  it.Subtotal().StringFixed(2),
		})
	}
	return v
}

func printCart(w io.Writer, c cartView) {
	if len(c.Items) == 0 {
		fmt.Fprintln(w, "Your cart is empty.")
		return
	}
	table(w, "ID\tPRODUCT\tPRICE\tQTY\tSUBTOTAL", func(tw *tabwriter.Writer) {
		for _, it := range c.Items {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", it.ProductID, it.Name,
				money(decimal.RequireFromString(it.Price)), it.Quantity,
				money(decimal.RequireFromString(it.Subtotal)))
		}
	})
	fmt.Fprintln(w, strings.Repeat("-", 24))
	fmt.Fprintf(w, "%s, total %s\n", printer.Sprintf("%d item(s)", c.ItemCount), money(decimal.RequireFromString(c.Total)))
}
