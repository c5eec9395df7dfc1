package models

import (
	"fmt"
	"time"
)

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	IsStaff      bool   `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Airport struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null;uniqueIndex"`
	ClosestBigCity string `gorm:"size:255;not null"`
}

// NameCity renders "Name (City)".
func (a Airport) NameCity() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ClosestBigCity)
}

type Route struct {
	ID            uint `gorm:"primaryKey"`
	SourceID      uint `gorm:"not null;index"`
	DestinationID uint `gorm:"not null;index"`
	Distance      int  `gorm:"not null;check:distance > 0"`

	Source      Airport `gorm:"foreignKey:SourceID;constraint:OnDelete:CASCADE"`
	Destination Airport `gorm:"foreignKey:DestinationID;constraint:OnDelete:CASCADE"`
}

// SourceDest renders "Src (City) - Dst (City)". Source and Destination must be loaded.
func (r Route) SourceDest() string {
	return fmt.Sprintf("%s - %s", r.Source.NameCity(), r.Destination.NameCity())
}

type AirplaneManufacturer struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex"`
}

type AirplaneType struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null;uniqueIndex:idx_airplane_type_name_manufacturer"`
	ManufacturerID *uint  `gorm:"uniqueIndex:idx_airplane_type_name_manufacturer"`

	Manufacturer *AirplaneManufacturer `gorm:"foreignKey:ManufacturerID;constraint:OnDelete:SET NULL"`
}

type Airplane struct {
	ID             uint   `gorm:"primaryKey"`
	Name           string `gorm:"size:255;not null"`
	Rows           int    `gorm:"not null"`
	SeatsInRow     int    `gorm:"not null"`
	AirplaneTypeID uint   `gorm:"not null;index"`
	Image          string `gorm:"size:255"`

	AirplaneType AirplaneType `gorm:"foreignKey:AirplaneTypeID;constraint:OnDelete:CASCADE"`
}

func (a Airplane) Capacity() int {
	return a.Rows * a.SeatsInRow
}

type CrewPosition struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex"`
}

type Crew struct {
	ID         uint   `gorm:"primaryKey"`
	FirstName  string `gorm:"size:255;not null;uniqueIndex:idx_crew_position_name"`
	LastName   string `gorm:"size:255;not null;uniqueIndex:idx_crew_position_name"`
	PositionID uint   `gorm:"not null;uniqueIndex:idx_crew_position_name"`

	Position CrewPosition `gorm:"foreignKey:PositionID;constraint:OnDelete:CASCADE"`
}

func (Crew) TableName() string {
	return "crews"
}

func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

// PositionName renders "Pilot: First Last". Position must be loaded.
func (c Crew) PositionName() string {
	return fmt.Sprintf("%s: %s", c.Position.Name, c.FullName())
}

// Flight's crew lives in the flight_crew join table; neither side owns it.
type Flight struct {
	ID            uint      `gorm:"primaryKey"`
	RouteID       uint      `gorm:"not null;index"`
	AirplaneID    uint      `gorm:"not null;index"`
	DepartureTime time.Time `gorm:"not null;index"`
	ArrivalTime   time.Time `gorm:"not null"`

	Route    Route    `gorm:"foreignKey:RouteID;constraint:OnDelete:CASCADE"`
	Airplane Airplane `gorm:"foreignKey:AirplaneID;constraint:OnDelete:CASCADE"`
	Crew     []Crew   `gorm:"many2many:flight_crew;constraint:OnDelete:CASCADE"`
	Tickets  []Ticket `gorm:"foreignKey:FlightID"`
}

type Order struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"not null;index"`
	UserID    uint      `gorm:"not null;index"`

	User    User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Tickets []Ticket `gorm:"foreignKey:OrderID"`
}

type Ticket struct {
	ID       uint `gorm:"primaryKey"`
	Row      int  `gorm:"not null;uniqueIndex:idx_ticket_seat"`
	Seat     int  `gorm:"not null;uniqueIndex:idx_ticket_seat"`
	FlightID uint `gorm:"not null;uniqueIndex:idx_ticket_seat"`
	OrderID  uint `gorm:"not null;index"`

	Flight Flight `gorm:"foreignKey:FlightID;constraint:OnDelete:CASCADE"`
	Order  Order  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Airport{},
		&Route{},
		&AirplaneManufacturer{},
		&AirplaneType{},
		&Airplane{},
		&CrewPosition{},
		&Crew{},
		&Flight{},
		&Order{},
		&Ticket{},
	}
}
