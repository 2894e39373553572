// Package cities provides the city data model, the production catalog, and
// population growth rules.
package cities

import (
	"github.com/google/uuid"

	"github.com/talgya/hexfront/internal/economy"
	"github.com/talgya/hexfront/internal/units"
	"github.com/talgya/hexfront/internal/world"
)

// ProductionItem is an entry in the build menu.
type ProductionItem struct {
	Type units.UnitType `json:"type"`
	Name string         `json:"name"`
	Cost int            `json:"cost"` // Production needed
	Icon string         `json:"icon"`
}

// ProductionQueueItem is one queued build with its accumulated progress.
type ProductionQueueItem struct {
	ID       string         `json:"id"`
	Item     ProductionItem `json:"item"`
	Progress int            `json:"progress"`
}

// Done reports whether enough production has been invested.
func (q *ProductionQueueItem) Done() bool {
	return q.Progress >= q.Item.Cost
}

// Catalog returns the build menu, one item per unit archetype.
func Catalog() []ProductionItem {
	items := make([]ProductionItem, 0, len(units.AllTypes))
	for _, t := range units.AllTypes {
		item, _ := LookupItem(t)
		items = append(items, item)
	}
	return items
}

// LookupItem returns the build menu entry for a unit type.
func LookupItem(t units.UnitType) (ProductionItem, bool) {
	if !t.Valid() {
		return ProductionItem{}, false
	}
	s := t.Stats()
	return ProductionItem{Type: t, Name: s.Name, Cost: s.Cost, Icon: s.Icon}, true
}

// City is a settlement founded by a settler.
type City struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	PlayerID string         `json:"player_id"`
	Coord    world.HexCoord `json:"coord"`

	Population      int                    `json:"population"`
	Resources       economy.Resources      `json:"resources"`
	ProductionQueue []*ProductionQueueItem `json:"production_queue"`
	IsCapital       bool                   `json:"is_capital"` // First city of its owner, never revoked
	GrowthProgress  int                    `json:"growth_progress"`
}

// New creates a population-1 city. Resources are filled in by the caller,
// which knows the map.
func New(name, playerID string, coord world.HexCoord, capital bool) *City {
	return &City{
		ID:              uuid.NewString(),
		Name:            name,
		PlayerID:        playerID,
		Coord:           coord,
		Population:      1,
		ProductionQueue: []*ProductionQueueItem{},
		IsCapital:       capital,
	}
}

// Enqueue appends a build to the end of the queue.
func (c *City) Enqueue(item ProductionItem) *ProductionQueueItem {
	q := &ProductionQueueItem{ID: uuid.NewString(), Item: item}
	c.ProductionQueue = append(c.ProductionQueue, q)
	return q
}

// Dequeue removes the queued build with the given id.
func (c *City) Dequeue(itemID string) bool {
	for i, q := range c.ProductionQueue {
		if q.ID == itemID {
			c.ProductionQueue = append(c.ProductionQueue[:i], c.ProductionQueue[i+1:]...)
			return true
		}
	}
	return false
}

// Head returns the build currently receiving production, or nil.
func (c *City) Head() *ProductionQueueItem {
	if len(c.ProductionQueue) == 0 {
		return nil
	}
	return c.ProductionQueue[0]
}

// AdvanceProduction invests this turn's production in the head build. It
// returns the finished build, already popped, or nil.
func (c *City) AdvanceProduction() *ProductionQueueItem {
	head := c.Head()
	if head == nil {
		return nil
	}
	head.Progress += c.Resources.Production
	if !head.Done() {
		return nil
	}
	c.ProductionQueue = c.ProductionQueue[1:]
	return head
}

// GrowthThreshold is the food needed to grow from the given population.
func GrowthThreshold(population int) int {
	return 15 + population*10 + population*population*2
}

// AdvanceGrowth banks this turn's food and grows the city once the threshold
// is met. It reports whether the population grew.
func (c *City) AdvanceGrowth() bool {
	c.GrowthProgress += c.Resources.Food
	if c.GrowthProgress < GrowthThreshold(c.Population) {
		return false
	}
	c.Population++
	c.GrowthProgress = 0
	return true
}
