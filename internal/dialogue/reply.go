package dialogue

import (
	"fmt"
	"strings"

	"github.com/vorder/vorder/internal/catalog"
	"github.com/vorder/vorder/internal/session"
)

// Reply templates. All user-facing text is Polish; the templates are plain
// strings so the texture stays predictable for voice synthesis.

const (
	replyUnknown = "Przepraszam, nie zrozumiałam. Mogę poszukać restauracji, " +
		"pokazać menu albo przyjąć zamówienie."
	replyWhichRestaurant      = "Którą restaurację wybierasz? Możesz podać nazwę albo numer z listy."
	replyWhichMenu            = "Której restauracji menu mam pokazać?"
	replyOrderNeedsRestaurant = "Najpierw wybierz restaurację, potem przyjmę zamówienie."
	replyNothingToConfirm     = "Nie masz teraz żadnego zamówienia do potwierdzenia."
	replyNothingToCancel      = "Nie ma żadnego zamówienia do anulowania."
	replyCancelled            = "Anulowałam zamówienie. Twój koszyk zostaje bez zmian."
	replyChangeNoList         = "Dobrze, szukamy dalej. Powiedz, gdzie albo na co masz ochotę."
)

// zl renders an amount the Polish way, with a decimal comma.
func zl(v float64) string {
	return strings.Replace(fmt.Sprintf("%.2f zł", v), ".", ",", 1)
}

func replyRestaurantList(refs []session.RestaurantRef) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mam %s: ", countPhrase(len(refs)))
	for i, r := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d. %s (%s, %s)", i+1, r.Name, r.City, r.Cuisine)
	}
	b.WriteString(". Którą wybierasz?")
	return b.String()
}

func countPhrase(n int) string {
	switch {
	case n == 1:
		return "jedną propozycję"
	case n >= 2 && n <= 4:
		return fmt.Sprintf("%d propozycje", n)
	default:
		return fmt.Sprintf("%d propozycji", n)
	}
}

func replyNoResults(location, cuisine string) string {
	switch {
	case location != "" && cuisine != "":
		return fmt.Sprintf("Nie znalazłam nic z kuchnią %s w %s. Spróbujemy czegoś innego?", cuisine, location)
	case location != "":
		return fmt.Sprintf("Nie znalazłam żadnej restauracji w %s. Spróbujemy innego miejsca?", location)
	case cuisine != "":
		return fmt.Sprintf("Nie znalazłam nic z kuchnią %s. Może coś innego?", cuisine)
	default:
		return "Nie mam teraz żadnych restauracji do pokazania."
	}
}

func replyOrdinalOutOfRange(n int) string {
	if n == 0 {
		return "Nie mam żadnej listy, z której można wybierać. Najpierw poszukajmy restauracji."
	}
	return fmt.Sprintf("Mam tylko %s na liście. Którą wybierasz?", countPhrase(n))
}

func replySelected(ref session.RestaurantRef) string {
	return fmt.Sprintf("Świetnie, %s w %s. Chcesz zobaczyć menu czy od razu zamawiasz?", ref.Name, ref.City)
}

func replyMenu(name string, entries []session.MenuEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Menu %s: ", name)
	for i, it := range entries {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %s", it.Name, zl(it.Price))
	}
	b.WriteString(". Co podać?")
	return b.String()
}

func replyNoMenu(name string) string {
	return fmt.Sprintf("Niestety nie mam teraz menu dla %s.", name)
}

func replyPendingElsewhere(pendingName, newName string) string {
	return fmt.Sprintf("Masz już zamówienie w %s. Dokończ je albo anuluj, zanim zamówisz w %s.",
		pendingName, newName)
}

func replyWhatToOrder(name string) string {
	return fmt.Sprintf("Co mam zamówić z %s?", name)
}

func replyDishesNotFound(missed []string, name string) string {
	return fmt.Sprintf("Nie znalazłam %s w menu %s. Powiedz, co innego podać.",
		strings.Join(missed, " ani "), name)
}

func replyPendingSummary(p *session.PendingOrder, missed []string) string {
	var b strings.Builder
	b.WriteString("W zamówieniu z ")
	b.WriteString(p.RestaurantName)
	b.WriteString(": ")
	b.WriteString(itemsPhrase(p.Items))
	fmt.Fprintf(&b, ", razem %s.", zl(p.Total()))
	if len(missed) > 0 {
		fmt.Fprintf(&b, " Nie znalazłam w menu: %s.", strings.Join(missed, ", "))
	}
	b.WriteString(" Potwierdzasz?")
	return b.String()
}

func itemsPhrase(items []session.OrderItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		s := it.Name
		if it.Size != "" {
			s += " (" + sizeLabel(it.Size) + ")"
		}
		if it.Qty > 1 {
			s = fmt.Sprintf("%dx %s", it.Qty, s)
		}
		parts[i] = s
	}
	return strings.Join(parts, ", ")
}

func sizeLabel(size string) string {
	switch size {
	case "small":
		return "mała"
	case "medium":
		return "średnia"
	case "large":
		return "duża"
	}
	return size
}

func replyConfirmed(snap session.OrderSnapshot) string {
	return fmt.Sprintf("Zamówienie przyjęte! %s z %s, razem %s. Smacznego!",
		itemsPhrase(snap.Items), snap.RestaurantName, zl(snap.Total))
}

func replyChangeWithList(refs []session.RestaurantRef) string {
	var b strings.Builder
	b.WriteString("Jasne, zmieniamy. Na liście zostały: ")
	for i, r := range refs {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%d. %s", i+1, r.Name)
	}
	b.WriteString(". Którą wybierasz?")
	return b.String()
}

func replyRecommendDish(restaurant string, it catalog.MenuItem) string {
	return fmt.Sprintf("W %s polecam %s za %s. Zamawiamy?", restaurant, it.Name, zl(it.Price))
}

func replyRecommendRestaurant(ref session.RestaurantRef) string {
	return fmt.Sprintf("Polecam %s w %s, kuchnia %s. Pokazać menu?", ref.Name, ref.City, ref.Cuisine)
}
