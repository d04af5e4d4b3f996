package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"pcshop-storefront/internal/checkout"
	"pcshop-storefront/internal/models"
	"pcshop-storefront/internal/pricing"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printProducts(w io.Writer, products []models.Product, withStatus bool) {
	if len(products) == 0 {
		fmt.Fprintln(w, "No products found.")
		return
	}
	tw := newTable(w)
	if withStatus {
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tSTATUS")
	} else {
		fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE")
	}
	for _, p := range products {
		if withStatus {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, pricing.Display(p.Price), productStatus(p))
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Category, pricing.Display(p.Price))
		}
	}
	_ = tw.Flush()
}

func productStatus(p models.Product) string {
	if p.IsActive {
		return "active"
	}
	return "archived"
}

func printProduct(w io.Writer, p models.Product) {
	tw := newTable(w)
	fmt.Fprintf(tw, "ID:\t%s\n", p.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", p.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", p.Category)
	fmt.Fprintf(tw, "Price:\t%s\n", pricing.Display(p.Price))
	if p.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", p.Description)
	}
	_ = tw.Flush()
}

func printLines(w io.Writer, lines []models.CartLine) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tQTY\tPRICE\tLINE TOTAL")
	for _, l := range lines {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			l.Product.ID, l.Product.Name, l.Quantity, pricing.Display(l.Product.Price), pricing.Display(l.LineTotal()))
	}
	_ = tw.Flush()
}

func printSummary(w io.Writer, s checkout.Summary) {
	printLines(w, s.Lines)
	fmt.Fprintln(w)

	tw := newTable(w)
	fmt.Fprintf(tw, "Name:\t%s\n", s.ShippingInfo.Name)
	fmt.Fprintf(tw, "Address:\t%s\n", s.ShippingInfo.Address)
	fmt.Fprintf(tw, "Email:\t%s\n", s.ShippingInfo.Email)
	fmt.Fprintf(tw, "Delivery location:\t%s\n", s.ShippingInfo.DeliveryLocation)
	fmt.Fprintf(tw, "Invoice method:\t%s\n", s.InvoiceMethod)
	fmt.Fprintf(tw, "Subtotal:\t%s\n", s.Subtotal)
	fmt.Fprintf(tw, "Shipping:\t%s\n", s.ShippingFee)
	fmt.Fprintf(tw, "Total:\t%s\n", s.Total)
	_ = tw.Flush()

	if s.Notice != "" {
		fmt.Fprintf(w, "\n%s\n", s.Notice)
	}
}

func printOrders(w io.Writer, page models.OrderPage) {
	fmt.Fprintf(w, "%s orders, page %d of %d\n", page.Status, page.Page, page.TotalPages)
	if len(page.Orders) == 0 {
		fmt.Fprintln(w, "No orders found.")
		return
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ORDER\tDATE\tITEMS\tINVOICE\tTOTAL")
	for _, o := range page.Orders {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
			o.ID, o.OrderDate.Format("2006-01-02 15:04"), len(o.Items), o.InvoiceMethod, pricing.Display(o.TotalAmount))
	}
	_ = tw.Flush()
}

func printUsers(w io.Writer, users []models.User) {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tEMAIL\tADMIN")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.IsAdmin)
	}
	_ = tw.Flush()
}
