package service

import (
	"github.com/nikolayk812/ecomall/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type sampleProduct struct {
	name        string
	description string
	price       string
	imageURL    string
}

var sampleProducts = []sampleProduct{
	{
		name:        "Organic Quinoa",
		description: "Premium quality organic quinoa grown sustainably. Rich in protein and essential amino acids. Perfect for healthy meals and salads.",
		price:       "299.00",
		imageURL:    "https://images.pexels.com/photos/1128678/pexels-photo-1128678.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
	{
		name:        "Cold Pressed Coconut Oil",
		description: "Pure virgin coconut oil extracted through traditional cold-pressing methods. Ideal for cooking and skincare applications.",
		price:       "450.00",
		imageURL:    "https://images.pexels.com/photos/1327838/pexels-photo-1327838.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
	{
		name:        "Organic Honey",
		description: "Raw, unprocessed honey sourced from sustainable beekeeping practices. Natural sweetener with amazing health benefits.",
		price:       "325.00",
		imageURL:    "https://images.pexels.com/photos/1656666/pexels-photo-1656666.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
	{
		name:        "Mixed Organic Nuts",
		description: "Premium assortment of organic almonds, walnuts, and cashews. Perfect healthy snack packed with nutrients and healthy fats.",
		price:       "550.00",
		imageURL:    "https://images.pexels.com/photos/1300972/pexels-photo-1300972.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
	{
		name:        "Herbal Green Tea",
		description: "Organic green tea blend with natural herbs and spices. Antioxidant-rich beverage for daily wellness and energy.",
		price:       "180.00",
		imageURL:    "https://images.pexels.com/photos/1367204/pexels-photo-1367204.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
	{
		name:        "Organic Brown Rice",
		description: "Sustainably grown brown rice with high fiber content. Nutritious whole grain perfect for healthy daily meals.",
		price:       "225.00",
		imageURL:    "https://images.pexels.com/photos/1395967/pexels-photo-1395967.jpeg?auto=compress&cs=tinysrgb&w=500",
	},
}

func SampleCatalog(cur currency.Unit) []domain.Product {
	products := make([]domain.Product, 0, len(sampleProducts))
	for _, p := range sampleProducts {
		products = append(products, domain.Product{
			Name:        p.name,
			Description: p.description,
			Price:       domain.Money{Amount: decimal.RequireFromString(p.price), Currency: cur},
			ImageURL:    p.imageURL,
		})
	}
	return products
}
