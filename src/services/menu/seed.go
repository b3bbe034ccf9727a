package menu

import "github.com/shopspring/decimal"

func item(id, name, category string, price int64, image string) MenuItem {
	return MenuItem{
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     decimal.NewFromInt(price),
		Available: true,
		Image:     image,
	}
}

// DefaultItems is the house menu loaded on first start.
func DefaultItems() []MenuItem {
	return []MenuItem{
		item("paneer-butter-masala", "Paneer Butter Masala", "Main Course", 280, "https://images.unsplash.com/photo-1631452180519-c014fe946bc7?auto=format&fit=crop&q=80&w=400"),
		item("butter-chicken", "Butter Chicken", "Main Course", 350, "https://images.unsplash.com/photo-1603894584202-933259bb7982?auto=format&fit=crop&q=80&w=400"),
		item("hyderabadi-veg-biryani", "Hyderabadi Veg Biryani", "Main Course", 240, "https://images.unsplash.com/photo-1563379091339-03b21bc4a4f8?auto=format&fit=crop&q=80&w=400"),
		item("butter-garlic-naan", "Butter Garlic Naan", "Bread", 60, "https://images.unsplash.com/photo-1626132646529-5003375a954e?auto=format&fit=crop&q=80&w=400"),
		item("masala-dosa", "Masala Dosa", "Breakfast", 120, "https://images.unsplash.com/photo-1589301760014-d929f3979dbc?auto=format&fit=crop&q=80&w=400"),
		item("mango-lassi", "Mango Lassi", "Beverages", 90, "https://images.unsplash.com/photo-1546173159-315724a31696?auto=format&fit=crop&q=80&w=400"),
		item("gulab-jamun", "Gulab Jamun (2pcs)", "Dessert", 80, "https://images.unsplash.com/photo-1589119908995-c6837fa14848?auto=format&fit=crop&q=80&w=400"),
		item("chicken-tikka", "Chicken Tikka", "Starters", 320, "https://images.unsplash.com/photo-1599487488170-d11ec9c172f0?auto=format&fit=crop&q=80&w=400"),
		item("chole-bhature", "Chole Bhature", "Breakfast", 180, "https://images.unsplash.com/photo-1626132646529-5003375a954e?auto=format&fit=crop&q=80&w=400"),
		item("samosa", "Samosa (2pcs)", "Starters", 40, "https://images.unsplash.com/photo-1601050633647-81a35d37c3c1?auto=format&fit=crop&q=80&w=400"),
		item("veg-hakka-noodles", "Veg Hakka Noodles", "Main Course", 220, "https://images.unsplash.com/photo-1585032226651-759b368d7246?auto=format&fit=crop&q=80&w=400"),
		item("cold-coffee", "Cold Coffee with Ice Cream", "Beverages", 110, "https://images.unsplash.com/photo-1517701604599-bb29b565090c?auto=format&fit=crop&q=80&w=400"),
		item("kesar-rasmalai", "Kesar Rasmalai", "Dessert", 100, "https://images.unsplash.com/photo-1631452180519-c014fe946bc7?auto=format&fit=crop&q=80&w=400"),
	}
}
