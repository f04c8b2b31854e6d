package fields

import "docverify/internal/doctype"

// schemas maps each document type to the fields a correct extraction carries.
// The generic entries are deliberately broad: they act as catch-nets for
// documents the classifier could not pin down.
var schemas = map[doctype.Type][]string{
	doctype.TypeDrivingLicense: {
		"firstName", "middleName", "lastName", "suffix", "dob",
		"addressLine1", "addressLine2", "city", "state", "zip",
		"countryName", "expirationDate", "idNumber", "licenseNumber", "issuingState", "issueDate",
		"class", "restrictions", "endorsements",
	},
	doctype.TypeMobileDriversLicense: {
		"firstName", "middleName", "lastName", "suffix", "dob",
		"licenseNumber", "issuingState", "issueDate", "expirationDate",
		"digitalSignature", "qrCode", "mobileAppProvider",
	},
	doctype.TypeStateID: {
		"firstName", "middleName", "lastName", "suffix", "dob",
		"addressLine1", "addressLine2", "city", "state", "zip",
		"countryName", "expirationDate", "idNumber", "issuingState", "issueDate",
	},
	doctype.TypeRealID: {
		"firstName", "middleName", "lastName", "suffix", "dob",
		"addressLine1", "addressLine2", "city", "state", "zip",
		"countryName", "expirationDate", "idNumber", "issuingState", "issueDate", "realIdCompliant",
	},
	doctype.TypePassport: {
		"passportNumber", "firstName", "middleName", "lastName", "suffix",
		"issuingCountry", "dateOfBirth", "issueDate", "expirationDate",
		"placeOfBirth", "nationality", "sex",
	},
	doctype.TypePassportCard: {
		"passportCardNumber", "firstName", "middleName", "lastName", "suffix",
		"issuingCountry", "dateOfBirth", "issueDate", "expirationDate",
		"placeOfBirth", "nationality", "sex",
	},
	doctype.TypeBirthCertificate: {
		"firstName", "middleName", "lastName", "dateOfBirth", "stateOfBirth", "dateIssued",
		"certificateNumber", "registrarSignature", "sealOfState",
	},
	doctype.TypeMarriageCertificate: {
		"spouseName1", "spouseName2", "marriageDate", "marriagePlace",
		"certificateNumber", "issuingOffice", "officiantName", "witnessNames",
	},
	doctype.TypeDivorceDecree: {
		"petitionerName", "respondentName", "divorceDate", "courtName",
		"caseNumber", "judgeName", "finalDecreeDate",
	},
	doctype.TypeSocialSecurityCard: {
		"firstName", "middleName", "lastName", "suffix", "socialSecurityNumber", "number",
	},
	doctype.TypePermanentResidentCard: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"alienNumber", "cardNumber", "categoryCode", "countryOfBirth",
		"issuingCountry", "expirationDate", "residentSince",
	},
	doctype.TypeNaturalizationCert: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"certificateNumber", "dateOfNaturalization", "placeOfNaturalization",
		"formerNationality", "issuingOffice",
	},
	doctype.TypeCitizenshipCert: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"certificateNumber", "dateOfCitizenship", "placeOfBirth",
		"issuingOffice", "parentCitizenship",
	},
	doctype.TypeEmploymentAuthDoc: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"alienNumber", "cardNumber", "categoryCode", "countryOfBirth",
		"expirationDate", "employmentAuthorized",
	},
	doctype.TypeFormI94: {
		"firstName", "middleName", "lastName", "admissionNumber",
		"dateOfArrival", "dateOfDeparture", "portOfEntry", "classOfAdmission",
	},
	doctype.TypeUSVisa: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"visaNumber", "visaType", "issueDate", "expirationDate",
		"issuingPost", "nationality", "passportNumber",
	},
	doctype.TypeReentryPermit: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"permitNumber", "issueDate", "expirationDate", "alienNumber",
	},
	doctype.TypeMilitaryID: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"serviceNumber", "rank", "branch", "issueDate", "expirationDate",
		"bloodType", "sponsor",
	},
	doctype.TypeVeteranID: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"veteranIdNumber", "issueDate", "expirationDate", "branch", "serviceYears",
	},
	doctype.TypeTribalID: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"tribalIdNumber", "tribeName", "issueDate", "expirationDate", "bloodQuantum",
	},
	doctype.TypeGlobalEntryCard: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"passId", "membershipNumber", "issueDate", "expirationDate",
	},
	doctype.TypeTSAPrecheckCard: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"knownTravelerNumber", "issueDate", "expirationDate",
	},
	doctype.TypeVoterRegistration: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"voterIdNumber", "registrationDate", "politicalParty", "precinct",
		"addressLine1", "addressLine2", "city", "state", "zip",
	},
	doctype.TypeProfessionalLicense: {
		"firstName", "middleName", "lastName", "suffix", "licenseNumber",
		"licenseType", "profession", "issueDate", "expirationDate",
		"issuingState", "issuingBoard",
	},
	doctype.TypeStudentID: {
		"firstName", "middleName", "lastName", "suffix", "studentId",
		"institution", "program", "issueDate", "expirationDate", "academicYear",
	},
	doctype.TypeUtilityBill: {
		"utilityBillType", "serviceProvider", "serviceProviderAddress",
		"accountHolderBillingName", "accountHolderBillingAddress",
		"serviceAddress", "accountNumber", "billDate", "dueDate",
		"periodStartDate", "periodEndDate", "amountDue",
	},
	doctype.TypeLeaseAgreement: {
		"tenantName", "landlordName", "propertyAddress", "leaseStartDate",
		"leaseEndDate", "monthlyRent", "securityDeposit", "signatureDate",
	},
	doctype.TypeBankStatement: {
		"accountHolderName", "bankName", "accountNumber", "routingNumber",
		"statementDate", "statementPeriod", "accountType", "balance",
	},
	doctype.TypeInsuranceCard: {
		"policyHolderName", "policyNumber", "groupNumber", "insuranceCompany",
		"effectiveDate", "expirationDate", "coverageType", "dependents",
	},
	doctype.TypeVoidedCheck: {
		"accountHolderName", "bankName", "bankAddress", "accountNumber",
		"routingNumber", "checkNumber", "checkDate",
	},
	doctype.TypeDirectDeposit: {
		"employeeName", "employeeAddress", "employeePhoneNumber", "employeeSocialSecurityNumber",
		"bankName", "bankAddress", "accountNumber", "routingNumber", "typeOfAccount",
		"partneringInstitutionName", "employeeSignature", "employeeSignatureDate",
	},
	doctype.TypeConsularID: {
		"firstName", "middleName", "lastName", "suffix", "dateOfBirth",
		"consularIdNumber", "issuingConsulate", "nationality", "issueDate", "expirationDate",
	},
	doctype.TypeDigitalID: {
		"firstName", "middleName", "lastName", "suffix", "digitalIdNumber",
		"platform", "issueDate", "expirationDate", "verificationLevel",
	},
	doctype.TypeIdentityDocument: {
		"firstName", "middleName", "lastName", "suffix", "dob", "dateOfBirth",
		"address", "addressLine1", "addressLine2", "city", "state", "zip", "country",
		"idNumber", "documentNumber", "passportNumber", "licenseNumber",
		"issueDate", "expirationDate", "dateIssued", "issuingAuthority",
		"nationality", "placeOfBirth", "sex", "height", "weight", "eyeColor", "hairColor",
	},
	doctype.TypeOtherIdentity: {
		"firstName", "middleName", "lastName", "suffix",
		"dob", "dateOfBirth", "address", "city", "state", "zip", "country",
		"idNumber", "passportNumber", "accountNumber", "ssn",
		"issueDate", "expirationDate", "dateIssued", "residentSince", "documentType",
	},
}

// Expected returns the canonical field list for t. Unknown types fall back to
// the broad other_identity schema so extraction always has something to target.
func Expected(t doctype.Type) []string {
	if s, ok := schemas[t]; ok {
		return append([]string(nil), s...)
	}
	return append([]string(nil), schemas[doctype.TypeOtherIdentity]...)
}
