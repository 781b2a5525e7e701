package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/MrEthical07/coursehub/internal/courses"
)

func (h *handlers) createCourse(c *fiber.Ctx) error {
	var in courses.Input
	if err := bind(c, &in); err != nil {
		return err
	}
	course, err := h.courses.Create(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "course": course})
}

func (h *handlers) editCourse(c *fiber.Ctx) error {
	var p courses.Patch
	if err := bind(c, &p); err != nil {
		return err
	}
	course, err := h.courses.Edit(c.UserContext(), c.Params("id"), p)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "course": course})
}

func (h *handlers) listCourses(c *fiber.Ctx) error {
	list, err := h.courses.List(c.UserContext())
	if err != nil {
		return err
	}
	if list == nil {
		list = []courses.Course{}
	}
	return c.JSON(fiber.Map{"success": true, "courses": list})
}

func (h *handlers) getCourse(c *fiber.Ctx) error {
	course, err := h.courses.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "course": course})
}

func (h *handlers) courseContent(c *fiber.Ctx) error {
	content, err := h.courses.Content(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if content == nil {
		content = []courses.Section{}
	}
	return c.JSON(fiber.Map{"success": true, "content": content})
}
