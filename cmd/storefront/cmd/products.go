package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/storefront/pkg/async"
	"github.com/dmitrymomot/storefront/pkg/catalog"
)

var (
	listSkip     int
	listLimit    int
	listCategory int64
	listSearch   string
	listFeatured bool
	listFree     bool

	featuredLimit int

	getRefresh bool
)

var productsCmd = &cobra.Command{
	Use:     "products",
	Aliases: []string{"p"},
	Short:   "Browse the product catalog",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		params := catalog.ListParams{Skip: listSkip, Limit: listLimit, Search: listSearch}
		if cmd.Flags().Changed("category") {
			params.CategoryID = &listCategory
		}
		if cmd.Flags().Changed("featured") {
			params.IsFeatured = &listFeatured
		}
		if cmd.Flags().Changed("free") {
			params.IsFree = &listFree
		}
		ps, err := application.Catalog.List(cmd.Context(), params)
		if err != nil {
			return err
		}
		v := productViews(ps)
		return render(cmd, v, func(w io.Writer) { printProducts(w, v) })
	},
}

var productsFeaturedCmd = &cobra.Command{
	Use:   "featured",
	Short: "List featured products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ps, err := application.Catalog.Featured(cmd.Context(), featuredLimit)
		if err != nil {
			return err
		}
		v := productViews(ps)
		return render(cmd, v, func(w io.Writer) { printProducts(w, v) })
	},
}

var productsGetCmd = &cobra.Command{
	Use:   "get <id>...",
	Short: "Show products by ID",
	Long:  "Show one or more products by ID. Several IDs are fetched concurrently.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 0, len(args))
		for _, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}

		ctx := cmd.Context()
		futures := make([]*async.Future[catalog.Product], 0, len(ids))
		for _, id := range ids {
			if getRefresh {
				application.Catalog.Forget(id)
			}
			futures = append(futures, async.Go(ctx, func(ctx context.Context) (catalog.Product, error) {
				return application.Catalog.Get(ctx, id)
			}))
		}
		ps, err := async.WaitAll(ctx, futures...)
		if err != nil {
			return err
		}

		if len(ps) == 1 {
			v := newProductView(ps[0])
			return render(cmd, v, func(w io.Writer) { printProduct(w, v) })
		}
		v := productViews(ps)
		return render(cmd, v, func(w io.Writer) {
			for i, p := range v {
				if i > 0 {
					fmt.Fprintln(w)
				}
				printProduct(w, p)
			}
		})
	},
}

var productsSlugCmd = &cobra.Command{
	Use:   "slug <slug>",
	Short: "Show a product by slug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := application.Catalog.GetBySlug(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		v := newProductView(p)
		return render(cmd, v, func(w io.Writer) { printProduct(w, v) })
	},
}

var productsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List product categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cs, err := application.Catalog.Categories(cmd.Context())
		if err != nil {
			return err
		}
		v := make([]categoryView, 0, len(cs))
		for _, c := range cs {
			v = append(v, categoryView{ID: c.ID, Name: c.Name, Slug: c.Slug, Description: c.Description})
		}
		return render(cmd, v, func(w io.Writer) {
			for _, c := range v {
				fmt.Fprintf(w, "%3d  %s\n", c.ID, c.Name)
			}
		})
	},
}

func init() {
	f := productsListCmd.Flags()
	f.IntVar(&listSkip, "skip", 0, "Number of products to skip")
	f.IntVar(&listLimit, "limit", 20, "Maximum number of products (1-100)")
	f.Int64Var(&listCategory, "category", 0, "Filter by category ID")
	f.StringVarP(&listSearch, "search", "s", "", "Search in name and description")
	f.BoolVar(&listFeatured, "featured", false, "Only featured products")
	f.BoolVar(&listFree, "free", false, "Only free products")

	productsFeaturedCmd.Flags().IntVar(&featuredLimit, "limit", 0, "Maximum number of products (1-20)")

	productsGetCmd.Flags().BoolVar(&getRefresh, "refresh", false, "Bypass the product cache")

	productsCmd.AddCommand(productsListCmd, productsFeaturedCmd, productsGetCmd, productsSlugCmd, productsCategoriesCmd)
	rootCmd.AddCommand(productsCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid product id %q", s)
	}
	return id, nil
}
