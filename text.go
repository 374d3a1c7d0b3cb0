package main

import "github.com/Zachkp/portfolio/internal/nav"

var (
	AboutMe = `I turn messy public and business data into decisions people can act on.
	Most of my projects start with a question somebody actually asked, a league grading its free agents,
	a province losing its young people, a card issuer looking for its best customers, and end with a model
	and a handful of charts that make the answer hard to ignore.`

	Headline = `Data analyst. Python, SQL, machine learning and visual storytelling.`

	ContactEmail = "hello@example.com"
	GitHubURL    = "https://github.com/13Datathon"
)

// navLinks are the sections the navbar points at, in page order.
var navLinks = []nav.Link{
	{Href: "#home", Label: "Home"},
	{Href: "#about", Label: "About"},
	{Href: "#skills", Label: "Skills"},
	{Href: "#projects", Label: "Projects"},
	{Href: "#contact", Label: "Contact"},
}
