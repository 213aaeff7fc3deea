package handlers

import (
	"github.com/gofiber/fiber/v2"

	"barbuddy/apperrors"
	"barbuddy/db"
	"barbuddy/services/groups"
)

type groupResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatorID string `json:"creator_id"`
	CreatedAt string `json:"created_at"`
}

func toGroupResponse(g db.Group) groupResponse {
	return groupResponse{
		ID:        g.ID.String(),
		Name:      g.Name,
		CreatorID: g.CreatorID.String(),
		CreatedAt: g.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func HandleGroupCreate(gsvc *groups.GroupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		var body struct {
			Name string `json:"name"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		group, err := gsvc.Create(c.Context(), userID, body.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toGroupResponse(group))
	}
}

func HandleGroupList(gsvc *groups.GroupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		items, err := gsvc.List(c.Context(), userID)
		if err != nil {
			return err
		}

		resp := make([]groupResponse, 0, len(items))
		for _, g := range items {
			resp = append(resp, toGroupResponse(g))
		}
		return c.JSON(resp)
	}
}

type groupMemberResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

type groupDetailResponse struct {
	groupResponse
	Members []groupMemberResponse `json:"members"`
}

// HandleGroupGet returns the group in the path with its member list.
func HandleGroupGet(gsvc *groups.GroupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, err := userIDFromContext(c); err != nil {
			return err
		}

		groupID, err := parseUUIDParam(c, "groupId")
		if err != nil {
			return err
		}

		detail, err := gsvc.Detail(c.Context(), groupID)
		if err != nil {
			return err
		}

		resp := groupDetailResponse{
			groupResponse: toGroupResponse(detail.Group),
			Members:       make([]groupMemberResponse, 0, len(detail.Members)),
		}
		for _, m := range detail.Members {
			resp.Members = append(resp.Members, groupMemberResponse{
				UserID:   m.UserID.String(),
				Username: m.Username,
			})
		}
		return c.JSON(resp)
	}
}

// HandleGroupAddUser adds the named user to the group in the path.
// Only the group's creator may do this.
func HandleGroupAddUser(gsvc *groups.GroupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		groupID, err := parseUUIDParam(c, "groupId")
		if err != nil {
			return err
		}

		var body struct {
			Username string `json:"username"`
		}
		if err := c.BodyParser(&body); err != nil {
			return apperrors.NewBadRequest("Invalid request body")
		}

		if err := gsvc.AddMember(c.Context(), callerID, groupID, body.Username); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// HandleGroupRemoveUser removes a member from the group in the path.
// Only the group's creator may do this.
func HandleGroupRemoveUser(gsvc *groups.GroupService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		callerID, err := userIDFromContext(c)
		if err != nil {
			return err
		}

		groupID, err := parseUUIDParam(c, "groupId")
		if err != nil {
			return err
		}

		userID, err := parseUUIDParam(c, "userId")
		if err != nil {
			return err
		}

		if err := gsvc.RemoveMember(c.Context(), callerID, groupID, userID); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
