package ticketRepo

import (
	"context"
	"errors"
	"testing"

	"parkinglot/database"
	"parkinglot/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

const ns = "parking.tickets"

func TestGetByCode(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("found", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "code", Value: "PARK001"},
			{Key: "status", Value: "occupied"},
			{Key: "car", Value: bson.D{{Key: "plate", Value: "ABC123"}}},
		}))

		ticket, err := repo.GetByCode(context.Background(), "PARK001")
		if err != nil {
			mt.Fatalf("GetByCode: %v", err)
		}
		if ticket.Status != models.TicketOccupied || ticket.Car == nil || ticket.Car.Plate != "ABC123" {
			mt.Fatalf("ticket = %+v", ticket)
		}
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		if _, err := repo.GetByCode(context.Background(), "PARK404"); !errors.Is(err, database.ErrNotFound) {
			mt.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}

func TestUpdateUnknownTicket(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("no match", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.Update(context.Background(), &models.Ticket{Code: "PARK404", Status: models.TicketAvailable})
		if !errors.Is(err, database.ErrNotFound) {
			mt.Fatalf("got %v, want ErrNotFound", err)
		}
	})
}

func TestListByStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes every document", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "code", Value: "PARK001"}, {Key: "status", Value: "available"}},
			bson.D{{Key: "code", Value: "PARK002"}, {Key: "status", Value: "available"}},
		))

		tickets, err := repo.ListByStatus(context.Background(), models.TicketAvailable)
		if err != nil {
			mt.Fatalf("ListByStatus: %v", err)
		}
		if len(tickets) != 2 || tickets[0].Code != "PARK001" || tickets[1].Code != "PARK002" {
			mt.Fatalf("tickets = %+v", tickets)
		}
	})

	mt.Run("empty result is not nil", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		tickets, err := repo.ListByStatus(context.Background(), models.TicketPaidValidated)
		if err != nil {
			mt.Fatalf("ListByStatus: %v", err)
		}
		if tickets == nil || len(tickets) != 0 {
			mt.Fatalf("tickets = %#v", tickets)
		}
	})
}

func TestUpsertInventory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("counts created tickets", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "n", Value: 2},
			{Key: "nModified", Value: 0},
			{Key: "upserted", Value: bson.A{
				bson.D{{Key: "index", Value: 1}, {Key: "_id", Value: "a"}},
				bson.D{{Key: "index", Value: 2}, {Key: "_id", Value: "b"}},
			}},
		})

		added, err := repo.UpsertInventory(context.Background(), []string{"PARK001", "PARK002", "PARK003"})
		if err != nil {
			mt.Fatalf("UpsertInventory: %v", err)
		}
		if added != 2 {
			mt.Fatalf("added = %d, want 2", added)
		}
	})

	mt.Run("nothing to do", func(mt *mtest.T) {
		repo := NewMongoTicketRepo(mt.DB)
		added, err := repo.UpsertInventory(context.Background(), nil)
		if err != nil || added != 0 {
			mt.Fatalf("added = %d, err = %v", added, err)
		}
	})
}
