package fakeapi

// seed loads the demo catalog: five categories and ten digital products.
func (s *Server) seed() {
	for _, c := range []struct{ name, desc string }{
		{"Web Development", "Templates, themes and components for web projects"},
		{"Mobile Apps", "UI kits and starter apps for iOS and Android"},
		{"Design Assets", "Icons, illustrations and graphics"},
		{"E-books", "Guides and tutorials"},
		{"Software Tools", "Utilities for developers"},
	} {
		s.AddCategory(c.name, c.desc)
	}

	for _, p := range []ProductInput{
		{Name: "React Admin Dashboard Template", ShortDescription: "Admin dashboard built with React and Material UI", Price: "49.99", OriginalPrice: "79.99", CategorySlug: "web-development", IsFeatured: true},
		{Name: "Vue.js E-commerce Template", ShortDescription: "Storefront template for Vue 3", Price: "69.99", CategorySlug: "web-development", IsFeatured: true},
		{Name: "Flutter Mobile App UI Kit", ShortDescription: "Over 100 screens for Flutter", Price: "39.99", CategorySlug: "mobile-apps"},
		{Name: "React Native Food Delivery App", ShortDescription: "Complete food delivery starter", Price: "89.99", OriginalPrice: "119.99", CategorySlug: "mobile-apps", IsFeatured: true},
		{Name: "Premium Icon Pack - 500 Icons", ShortDescription: "SVG and PNG icons in five styles", Price: "19.99", CategorySlug: "design-assets"},
		{Name: "Web Design Illustration Pack", ShortDescription: "Illustrations for landing pages", Price: "29.99", CategorySlug: "design-assets"},
		{Name: "JavaScript Mastery E-book", ShortDescription: "From basics to advanced patterns", Price: "24.99", CategorySlug: "e-books"},
		{Name: "Free HTML5 Landing Page Template", ShortDescription: "Responsive landing page", Price: "0.00", CategorySlug: "web-development", IsFree: true, IsFeatured: true},
		{Name: "Python Web Scraping Guide", ShortDescription: "Scraping with requests and BeautifulSoup", Price: "34.99", CategorySlug: "e-books"},
		{Name: "Code Formatter & Beautifier Tool", ShortDescription: "Format code in twenty languages", Price: "15.99", CategorySlug: "software-tools"},
	} {
		if _, err := s.AddProduct(p); err != nil {
			panic(err)
		}
	}
}
