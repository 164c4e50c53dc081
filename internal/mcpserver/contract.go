package mcpserver

// PostFormatContract describes the Markdown post format the collection
// accepts, for LLM consumers drafting new posts.
const PostFormatContract = `# Quill Post Format

Every post is a Markdown file with a leading frontmatter block.

## Structure

` + "```" + `markdown
---
title: Testing Signals with Angular Testing Library
slug: testing-signals-with-angular-testing-library
date: 2024-01-15
tags: angular, testing
published: true
description: One-line summary shown in listings
banner: ./images/banner.png
bannerCredit: Photo by Someone
canonical_url: https://example.com/elsewhere
---

Body text in standard Markdown.
` + "```" + `

## Rules

1. The block starts and ends with a line of exactly ` + "`---`" + ` and must be the first thing in the file.
2. Each line is ` + "`key: value`" + `. Only the first colon separates key from value, so URLs and
   titles may contain colons. There is no quoting or escaping; lists are comma-separated.
3. ` + "`title`" + `, ` + "`slug`" + ` and ` + "`date`" + ` are required. The slug may only use letters, digits, ` + "`-`" + ` and ` + "`_`" + `.
4. A post is published only when ` + "`published`" + ` is exactly ` + "`true`" + `.
5. Relative ` + "`banner`" + ` and image paths are resolved against the post's own directory.
6. Fenced code blocks should carry a language tag (` + "`ts`" + `, ` + "`sh`" + `, ` + "`yml`" + ` and other common aliases work).
   Unknown languages are rendered as plain text.
`
