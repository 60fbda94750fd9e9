package classifier

import "github.com/timmy/docclass/internal/domain"

// DefaultRules returns the built-in rule table in precedence order.
// Owner rules come first, then governing, community, board, and staff rules.
// community_directory sits among the community rules but is board_only
// because directories carry contact details.
func DefaultRules() []Rule {
	return []Rule{
		// Owner documents
		{
			Category:     "owner_statement",
			AccessLevel:  domain.AccessOwnerOnly,
			PathPatterns: []Pattern{P(`/Statement/`), P(`/Statements/`), P(`/Billing/`)},
			NamePatterns: []Pattern{P(`^\d+.*statement`), P(`statement.*\.pdf$`), P(`^R\d+L\d+`)},
		},
		{
			Category:     "owner_ledger",
			AccessLevel:  domain.AccessOwnerOnly,
			PathPatterns: []Pattern{P(`/Ledger/`), P(`/Account History/`)},
			NamePatterns: []Pattern{P(`ledger`), P(`account.*history`)},
		},
		{
			Category:     "owner_letter",
			AccessLevel:  domain.AccessOwnerOnly,
			PathPatterns: []Pattern{P(`/Owner Letters/`), P(`/Homeowner Letters/`)},
			NamePatterns: []Pattern{P(`letter.*to.*`), P(`demand.*letter`), P(`collection.*letter`), P(`notice.*to.*owner`)},
		},
		{
			Category:     "owner_arc_submission",
			AccessLevel:  domain.AccessARCReview,
			PathPatterns: []Pattern{P(`/ARC.*Submission/`), P(`/ARC.*Application/`), P(`/Architectural.*Request/`)},
			NamePatterns: []Pattern{P(`arc.*application`), P(`arc.*request`), P(`architectural.*submission`)},
		},

		// Governing documents
		{
			Category:     "governing_ccr",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Govern/`), P(`/Governing/`), P(`/CCR/`)},
			NamePatterns: []Pattern{P(`ccr`), P(`cc&r`), P(`covenants?`), P(`declaration`), P(`deed.*restriction`), P(`restrictions`)},
		},
		{
			Category:     "governing_bylaws",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Govern/`), P(`/Governing/`), P(`/Bylaws/`)},
			NamePatterns: []Pattern{P(`bylaw`), P(`by-law`), P(`by\s+law`)},
		},
		{
			Category:     "governing_rules",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Govern/`), P(`/Governing/`), P(`/Rules/`)},
			NamePatterns: []Pattern{
				P(`rules?.*regulation`),
				P(`regulation`),
				P(`policies`),
				Unless(`policy`, `insurance`),
				Unless(`guidelines?`, `arc`),
			},
		},
		{
			Category:     "governing_arc_guidelines",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/ARC/`), P(`/Architectural/`), P(`/Design/`)},
			NamePatterns: []Pattern{P(`arc.*guide`), P(`architectural.*guide`), P(`architectural.*standard`), P(`design.*guide`), P(`design.*standard`)},
		},

		// Community documents
		{
			Category:     "community_minutes",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Minutes/`), P(`/Meeting Minutes/`), P(`/Board Meeting/`)},
			NamePatterns: []Pattern{P(`minutes`), P(`meeting.*notes`), P(`board.*meeting`)},
		},
		{
			Category:     "community_newsletter",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Newsletter/`), P(`/Communications/`)},
			NamePatterns: []Pattern{P(`newsletter`), P(`bulletin`), P(`community.*update`)},
		},
		{
			Category:     "community_announcement",
			AccessLevel:  domain.AccessCommunityPublic,
			PathPatterns: []Pattern{P(`/Notices/`), P(`/Announcements/`)},
			NamePatterns: []Pattern{P(`announcement`), Unless(`notice`, `violation`), P(`alert`), P(`advisory`)},
		},
		{
			Category:     "community_directory",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Directory/`), P(`/Contact/`)},
			NamePatterns: []Pattern{P(`directory`), P(`contact.*list`), P(`phone.*list`), P(`resident.*list`)},
		},

		// Board documents
		{
			Category:     "board_financial",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Financial/`), P(`/Budget/`), P(`/Audit/`), P(`/Reserve/`)},
			NamePatterns: []Pattern{
				P(`budget`), P(`financial.*statement`), P(`balance.*sheet`), P(`income.*statement`),
				P(`audit`), P(`reserve.*study`), P(`reserve.*analysis`), P(`bank.*statement`),
			},
		},
		{
			Category:     "board_delinquency",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Delinquency/`), P(`/Collections/`), P(`/Aging/`)},
			NamePatterns: []Pattern{P(`delinquen`), P(`aging.*report`), P(`collection.*report`), P(`past.*due`)},
		},
		{
			Category:     "board_insurance",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Insurance/`)},
			NamePatterns: []Pattern{P(`insurance.*polic`), P(`certificate.*insurance`), P(`coi`), P(`coverage`), P(`liability.*policy`)},
		},
		{
			Category:     "board_contracts",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Contract/`), P(`/Agreement/`), P(`/Service Agreement/`)},
			NamePatterns: []Pattern{P(`contract`), Unless(`agreement`, `arc`), P(`service.*contract`), P(`maintenance.*agreement`)},
		},
		{
			Category:     "board_legal",
			AccessLevel:  domain.AccessBoardOnly,
			PathPatterns: []Pattern{P(`/Legal/`), P(`/Attorney/`), P(`/Litigation/`)},
			NamePatterns: []Pattern{
				P(`legal`), P(`attorney`), P(`lawsuit`), P(`litigation`),
				Unless(`lien`, `release`), P(`judgment`), P(`court`),
			},
		},

		// Staff documents
		{
			Category:     "staff_bids",
			AccessLevel:  domain.AccessStaffOnly,
			PathPatterns: []Pattern{P(`/Bid/`), P(`/Bids/`), P(`/Proposal/`), P(`/Proposals/`), P(`/Quote/`)},
			NamePatterns: []Pattern{P(`bid`), P(`proposal`), P(`estimate`), P(`quote`), P(`pricing`)},
		},
		{
			Category:     "staff_violations",
			AccessLevel:  domain.AccessStaffOnly,
			PathPatterns: []Pattern{P(`/Violation/`), P(`/Compliance/`)},
			NamePatterns: []Pattern{P(`violation`), P(`compliance.*notice`), P(`warning.*letter`), P(`fine.*notice`)},
		},
		{
			Category:     "staff_work_orders",
			AccessLevel:  domain.AccessStaffOnly,
			PathPatterns: []Pattern{P(`/Work.*Order/`), P(`/Maintenance.*Request/`), P(`/Service.*Request/`)},
			NamePatterns: []Pattern{P(`work.*order`), P(`service.*request`), P(`maintenance.*request`), P(`repair.*request`)},
		},
		{
			Category:     "staff_correspondence",
			AccessLevel:  domain.AccessStaffOnly,
			PathPatterns: []Pattern{P(`/Internal/`), P(`/Staff.*Notes/`), P(`/Correspondence/`)},
			NamePatterns: []Pattern{P(`internal.*memo`), P(`staff.*note`), Unless(`correspondence`, `owner`)},
		},
		{
			Category:     "staff_vendor",
			AccessLevel:  domain.AccessStaffOnly,
			PathPatterns: []Pattern{P(`/Vendor/`), P(`/W9/`), P(`/W-9/`)},
			NamePatterns: []Pattern{P(`w-?9`), P(`vendor.*info`), P(`vendor.*contact`), P(`vendor.*setup`)},
		},
	}
}
